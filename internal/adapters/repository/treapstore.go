package repository

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/snielsen221b/evotext/internal/domain/model"
	"github.com/snielsen221b/evotext/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: best distance ASC, then run id ASC (deterministic). The
// comparator's "less" means ranks earlier, so in-order traversal yields
// the leaderboard from best to worst.

// treap node
type node struct {
	id       string
	distance int
	prio     uint64
	left     *node
	right    *node
	size     int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aDist, aID) ranks earlier than (bDist, bID).
func less(aDist int, aID string, bDist int, bID string) bool {
	if aDist != bDist {
		return aDist < bDist // closer to the goal ranks earlier
	}
	return aID < bID // tie-breaker by id asc
}

func rotateRight(n *node) *node {
	l := n.left
	n.left = l.right
	l.right = n
	fix(n)
	fix(l)
	return l
}

func rotateLeft(n *node) *node {
	r := n.right
	n.right = r.left
	r.left = n
	fix(n)
	fix(r)
	return r
}

func insert(n *node, id string, distance int, prio uint64) *node {
	if n == nil {
		return &node{id: id, distance: distance, prio: prio, size: 1}
	}
	if less(distance, id, n.distance, n.id) {
		n.left = insert(n.left, id, distance, prio)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, distance, prio)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

// rankOf returns the zero-based in-order position of (distance, id).
func rankOf(n *node, id string, distance int) int {
	rank := 0
	for n != nil {
		if less(distance, id, n.distance, n.id) {
			n = n.left
		} else if n.id == id {
			return rank + nsize(n.left)
		} else {
			rank += nsize(n.left) + 1
			n = n.right
		}
	}
	return -1
}

// walkInOrder visits nodes from best to worst until fn returns false.
func walkInOrder(n *node, fn func(*node) bool) bool {
	if n == nil {
		return true
	}
	if !walkInOrder(n.left, fn) {
		return false
	}
	if !fn(n) {
		return false
	}
	return walkInOrder(n.right, fn)
}

// TreapStore keeps completed runs and ranks them by best distance.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	runs map[string]model.Run
	// byExperiment maps experiment id to run ids in record order.
	byExperiment map[string][]string
	prng         *rand.Rand
	best         int // lowest distance seen, -1 when empty
}

// NewTreapStore creates an empty store.
func NewTreapStore(_ context.Context, opts ...StoreOption) *TreapStore {
	s := &TreapStore{
		runs:         make(map[string]model.Run),
		byExperiment: make(map[string][]string),
		prng:         rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // treap priorities need speed, not crypto
		best:         -1,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Record stores a completed run and inserts it into the ranking.
func (s *TreapStore) Record(_ context.Context, run model.Run) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	id := run.Spec.RunID
	if _, exists := s.runs[id]; exists {
		return false, nil
	}

	s.runs[id] = run
	s.byExperiment[run.Spec.ExperimentID] = append(s.byExperiment[run.Spec.ExperimentID], id)
	s.root = insert(s.root, id, run.BestDistance, s.prng.Uint64())

	if s.best < 0 || run.BestDistance < s.best {
		s.best = run.BestDistance
		metrics.UpdateBestDistance(s.best)
	}
	metrics.UpdateTotalRuns(len(s.runs))

	return true, nil
}

// Get returns a run by id.
func (s *TreapStore) Get(_ context.Context, runID string) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return model.Run{}, ErrNotFound
	}
	return run, nil
}

// ByExperiment returns the recorded runs of an experiment ordered by
// trial index.
func (s *TreapStore) ByExperiment(_ context.Context, experimentID string) ([]model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byExperiment[experimentID]
	runs := make([]model.Run, 0, len(ids))
	for _, id := range ids {
		runs = append(runs, s.runs[id])
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Spec.TrialIndex < runs[j].Spec.TrialIndex
	})
	return runs, nil
}

// Rank returns the rank entry for a run.
func (s *TreapStore) Rank(_ context.Context, runID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return Entry{}, ErrNotFound
	}

	pos := rankOf(s.root, runID, run.BestDistance)
	if pos < 0 {
		return Entry{}, ErrNotFound
	}

	return s.entryFor(run, pos+1), nil
}

// TopN returns the first n entries of the ranking.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, n)
	walkInOrder(s.root, func(nd *node) bool {
		run := s.runs[nd.id]
		entries = append(entries, s.entryFor(run, len(entries)+1))
		return len(entries) < n
	})
	return entries, nil
}

// Count returns the number of runs recorded.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// entryFor builds an Entry from a run and its 1-based rank.
// Must be called with s.mu held.
func (s *TreapStore) entryFor(run model.Run, rank int) Entry {
	return Entry{
		Rank:         rank,
		RunID:        run.Spec.RunID,
		ExperimentID: run.Spec.ExperimentID,
		BestDistance: run.BestDistance,
		BestText:     run.BestText,
		Generations:  run.Spec.Generations,
		InitMode:     string(run.Spec.Mode),
	}
}
