// Package genome defines the string individual evolved by the engine.
package genome

import (
	"fmt"
	"math/rand"
)

// Alphabet is the set of characters an individual may contain:
// ASCII uppercase letters plus space.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ "

// Default random-initialization length bounds.
const (
	defaultMinLength = 4
	defaultMaxLength = 30
)

// Individual is a candidate message represented as a mutable rune slice
// so the genetic operators can splice and edit it in place.
type Individual struct {
	genes []rune

	// distance caches the evaluated fitness; valid guards staleness after
	// an operator modified the genes.
	distance int
	valid    bool
}

// NewFromText builds an individual holding the given text verbatim.
func NewFromText(text string) *Individual {
	return &Individual{genes: []rune(text)}
}

// NewRandom builds an individual with a random length in
// [defaultMinLength, defaultMaxLength] filled from Alphabet.
func NewRandom(rng *rand.Rand) *Individual {
	length := defaultMinLength + rng.Intn(defaultMaxLength-defaultMinLength+1)
	genes := make([]rune, length)
	for i := range genes {
		genes[i] = RandomChar(rng)
	}
	return &Individual{genes: genes}
}

// RandomChar returns a uniformly random character from Alphabet.
func RandomChar(rng *rand.Rand) rune {
	return rune(Alphabet[rng.Intn(len(Alphabet))])
}

// Text returns the individual's message as a string.
func (ind *Individual) Text() string {
	return string(ind.genes)
}

// Len returns the number of characters in the individual.
func (ind *Individual) Len() int {
	return len(ind.genes)
}

// Genes exposes the underlying rune slice for operators. Callers that
// modify it must also call Invalidate.
func (ind *Individual) Genes() []rune {
	return ind.genes
}

// SetGenes replaces the gene slice and invalidates the cached fitness.
func (ind *Individual) SetGenes(genes []rune) {
	ind.genes = genes
	ind.valid = false
}

// Clone returns a deep copy of the individual, including its cached
// fitness when valid.
func (ind *Individual) Clone() *Individual {
	genes := make([]rune, len(ind.genes))
	copy(genes, ind.genes)
	return &Individual{genes: genes, distance: ind.distance, valid: ind.valid}
}

// Distance returns the cached fitness. Only meaningful when Valid.
func (ind *Individual) Distance() int {
	return ind.distance
}

// SetDistance records an evaluated fitness.
func (ind *Individual) SetDistance(d int) {
	ind.distance = d
	ind.valid = true
}

// Valid reports whether the cached fitness matches the current genes.
func (ind *Individual) Valid() bool {
	return ind.valid
}

// Invalidate marks the cached fitness stale after an in-place edit.
func (ind *Individual) Invalidate() {
	ind.valid = false
}

// String implements fmt.Stringer.
func (ind *Individual) String() string {
	return fmt.Sprintf("Individual(%q)", ind.Text())
}

// ValidateGoal checks that every rune of goal is drawn from Alphabet.
func ValidateGoal(goal string) error {
	if goal == "" {
		return fmt.Errorf("%w: goal must not be empty", ErrInvalidGoal)
	}
	for _, r := range goal {
		if !validChar(r) {
			return fmt.Errorf("%w: goal %q contains illegal character %q (valid set: %q)",
				ErrInvalidGoal, goal, r, Alphabet)
		}
	}
	return nil
}

func validChar(r rune) bool {
	return r == ' ' || (r >= 'A' && r <= 'Z')
}

// Population is an ordered collection of individuals.
type Population []*Individual

// NewRandomPopulation builds n independently random individuals.
func NewRandomPopulation(n int, rng *rand.Rand) Population {
	pop := make(Population, n)
	for i := range pop {
		pop[i] = NewRandom(rng)
	}
	return pop
}

// NewUniformPopulation builds n identical copies of a single random
// individual. One draw, shared start for the whole population.
func NewUniformPopulation(n int, rng *rand.Rand) Population {
	pop := make(Population, n)
	if n == 0 {
		return pop
	}
	seed := NewRandom(rng)
	for i := range pop {
		pop[i] = seed.Clone()
	}
	return pop
}
