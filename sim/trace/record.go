// Package trace provides placement decision recording for strategy analysis.
// Records are plain data with no imports from sim or sim/cluster, so a trace
// can be kept and summarized after the cluster is gone.
package trace

// PlacementRecord captures one committed task placement.
type PlacementRecord struct {
	Service    string
	Task       string
	TaskID     uint64
	Index      int    // 0-based position of the task in its service expansion
	Instance   int    // index of the chosen instance in the cluster
	Strategy   string // strategy kind that made the choice
	Candidates int    // size of the eligibility cache when the choice was made
}

// ExhaustionRecord captures a placement that found no eligible instance.
type ExhaustionRecord struct {
	Service   string
	Task      string
	Index     int
	Total     int
	Exhausted map[string]int // resource name → number of instances out of it
}
