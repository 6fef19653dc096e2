package trace

// TraceSummary aggregates statistics from a PlacementTrace.
type TraceSummary struct {
	TotalPlacements    int
	TotalExhaustions   int
	MeanCandidates     float64
	MinCandidates      int
	UniqueTargets      int
	TargetDistribution map[int]int    // instance index → tasks placed there
	ServicePlacements  map[string]int // service name → tasks placed
}

// Summarize computes aggregate statistics from a PlacementTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(pt *PlacementTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[int]int),
		ServicePlacements:  make(map[string]int),
	}
	if pt == nil {
		return summary
	}

	summary.TotalPlacements = len(pt.Placements)
	summary.TotalExhaustions = len(pt.Exhaustions)

	if len(pt.Placements) > 0 {
		total := 0
		summary.MinCandidates = pt.Placements[0].Candidates
		for _, p := range pt.Placements {
			summary.TargetDistribution[p.Instance]++
			summary.ServicePlacements[p.Service]++
			total += p.Candidates
			if p.Candidates < summary.MinCandidates {
				summary.MinCandidates = p.Candidates
			}
		}
		summary.MeanCandidates = float64(total) / float64(len(pt.Placements))
	}

	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
