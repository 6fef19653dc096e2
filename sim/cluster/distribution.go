package cluster

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Distribution summarizes a sample, such as per-instance utilization or
// per-trial failure progress.
type Distribution struct {
	Count         int
	Min, Max      float64
	Mean          float64
	P50, P95, P99 float64
}

// NewDistribution summarizes values. Empty input gives the zero Distribution.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Distribution{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  stat.Mean(sorted, nil),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
	}
}

// percentile interpolates linearly between the two ranks around p.
// sorted must be in ascending order.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[lo+1]-sorted[lo])
}
