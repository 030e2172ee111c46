// Package stats provides the avg/std/min/max summaries recorded per
// generation and across experiment trials.
package stats

import "math"

// Summary aggregates a sample of distances.
type Summary struct {
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
	Std   float64 `json:"std"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Summarize computes a Summary over the given values. Std is the
// population standard deviation (divide by N, not N-1), matching the
// convention of the experiment reports this service produces.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}

	var sum float64
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Avg = sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - s.Avg
		sq += d * d
	}
	s.Std = math.Sqrt(sq / float64(len(values)))

	return s
}

// GenerationRow is one logbook line of an evolution run: the summary of
// population fitness after a generation, plus how many individuals were
// re-evaluated to produce it.
type GenerationRow struct {
	Gen     int     `json:"gen"`
	Evals   int     `json:"nevals"`
	Fitness Summary `json:"fitness"`
}

// SummarizeInts converts int samples and summarizes them.
func SummarizeInts(values []int) Summary {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return Summarize(floats)
}
