// Package fitness computes the distance between a candidate message and
// the goal. Lower is better; zero means the goal was reached.
package fitness

import "context"

// Evaluator scores candidate text against a fixed goal.
type Evaluator interface {
	// Evaluate returns the distance from text to the goal, honoring ctx
	// for cancellation.
	Evaluate(ctx context.Context, text string) (int, error)
}

// Levenshtein implements Evaluator using edit distance to a goal phrase.
type Levenshtein struct {
	goal []rune
}

// NewLevenshtein builds an evaluator for the given goal.
func NewLevenshtein(goal string) *Levenshtein {
	return &Levenshtein{goal: []rune(goal)}
}

// Goal returns the goal text.
func (l *Levenshtein) Goal() string {
	return string(l.goal)
}

// Evaluate returns the edit distance from text to the goal.
func (l *Levenshtein) Evaluate(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return Distance([]rune(text), l.goal), nil
}

// Distance computes the Levenshtein distance between two rune slices
// with the Wagner-Fischer dynamic program, using two rolling rows.
// Allowed edits are insertion, deletion, and substitution, each cost 1.
func Distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost
			curr[j] = min3(deletion, insertion, substitution)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
