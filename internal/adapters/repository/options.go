package repository

import "math/rand"

// StoreOption applies a configuration option to the TreapStore.
type StoreOption func(*TreapStore)

// WithPriorityRand sets the random source used for treap priorities.
// Seeded sources make tree shapes reproducible in tests.
func WithPriorityRand(r *rand.Rand) StoreOption {
	return func(s *TreapStore) {
		if r != nil {
			s.prng = r
		}
	}
}
