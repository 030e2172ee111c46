package evolve

import (
	"math/rand"

	"github.com/snielsen221b/evotext/internal/domain/genome"
)

// Per-edit mutation probabilities. A mutating individual rolls each edit
// type independently.
const (
	insertProb     = 0.05
	deleteProb     = 0.05
	substituteProb = 0.05
)

// selectTournament picks k individuals by repeated tournaments of the
// given size: draw tournamentSize contenders uniformly, keep the one
// with the lowest distance. Winners are cloned so later in-place edits
// do not alias the parent population.
func selectTournament(pop genome.Population, k, tournamentSize int, rng *rand.Rand) genome.Population {
	selected := make(genome.Population, 0, k)
	for i := 0; i < k; i++ {
		best := pop[rng.Intn(len(pop))]
		for j := 1; j < tournamentSize; j++ {
			contender := pop[rng.Intn(len(pop))]
			if contender.Distance() < best.Distance() {
				best = contender
			}
		}
		selected = append(selected, best.Clone())
	}
	return selected
}

// vary applies crossover to adjacent pairs and mutation to each
// individual in place.
func vary(offspring genome.Population, crossoverProb, mutationProb float64, rng *rand.Rand) {
	for i := 1; i < len(offspring); i += 2 {
		if rng.Float64() < crossoverProb {
			crossoverTwoPoint(offspring[i-1], offspring[i], rng)
		}
	}
	for _, ind := range offspring {
		if rng.Float64() < mutationProb {
			mutate(ind, rng)
		}
	}
}

// crossoverTwoPoint swaps a random gene segment between two individuals.
// The segment is bounded by the shorter individual, so both keep their
// lengths.
func crossoverTwoPoint(a, b *genome.Individual, rng *rand.Rand) {
	size := a.Len()
	if b.Len() < size {
		size = b.Len()
	}
	if size < 2 {
		return
	}

	p1 := 1 + rng.Intn(size)
	p2 := 1 + rng.Intn(size-1)
	if p2 >= p1 {
		p2++
	} else {
		p1, p2 = p2, p1
	}

	ga, gb := a.Genes(), b.Genes()
	for i := p1; i < p2; i++ {
		ga[i], gb[i] = gb[i], ga[i]
	}
	a.Invalidate()
	b.Invalidate()
}

// mutate applies up to one insertion, one deletion, and one
// substitution, each with its own probability. Deletion is skipped when
// it would empty the individual.
func mutate(ind *genome.Individual, rng *rand.Rand) {
	genes := ind.Genes()

	if rng.Float64() < insertProb {
		i := rng.Intn(len(genes) + 1)
		genes = append(genes, 0)
		copy(genes[i+1:], genes[i:])
		genes[i] = genome.RandomChar(rng)
	}

	if len(genes) > 1 && rng.Float64() < deleteProb {
		i := rng.Intn(len(genes))
		genes = append(genes[:i], genes[i+1:]...)
	}

	if rng.Float64() < substituteProb {
		i := rng.Intn(len(genes))
		genes[i] = genome.RandomChar(rng)
	}

	ind.SetGenes(genes)
}
