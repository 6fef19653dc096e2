package cluster

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inference-sim/consim/sim"
)

// ResourceExhaustion counts the instances that lack headroom in one resource.
type ResourceExhaustion struct {
	Resource sim.Resource
	Count    int
	Percent  float64 // Count / pool size × 100
}

// ResourceExhaustionError is returned by Cluster.Deploy when a task has no
// eligible instance left. It carries a per-resource breakdown over the whole
// pool, not just the instances that were still eligible.
type ResourceExhaustionError struct {
	Service   string
	Task      string
	Index     int // 0-based position of the failing task
	Total     int // service size
	Instances int // pool size
	Exhausted []ResourceExhaustion
}

// Error renders the diagnostic report:
//
//	Ran out allocating task web (2 of 3):
//	 *   1 (100%) instances out of cpu
func (e *ResourceExhaustionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ran out allocating task %s (%d of %d):", e.Task, e.Index, e.Total)
	for _, r := range e.Exhausted {
		fmt.Fprintf(&b, "\n * %3d (%2.0f%%) instances out of %s", r.Count, r.Percent, r.Resource)
	}
	return b.String()
}

// ExhaustedCount returns how many instances were out of r, 0 if none.
func (e *ResourceExhaustionError) ExhaustedCount(r sim.Resource) int {
	for _, x := range e.Exhausted {
		if x.Resource == r {
			return x.Count
		}
	}
	return 0
}

// exhaustion classifies every instance in the pool by the resources that
// block t and builds the error for the n-th task of svc.
func (c *Cluster) exhaustion(svc *sim.Service, t *sim.Task, n int) *ResourceExhaustionError {
	counts := make(map[sim.Resource]int)
	for _, inst := range c.instances {
		for _, r := range inst.Exhausted(t) {
			counts[r]++
		}
	}

	exhausted := make([]ResourceExhaustion, 0, len(counts))
	for r, count := range counts {
		exhausted = append(exhausted, ResourceExhaustion{
			Resource: r,
			Count:    count,
			Percent:  float64(count) / float64(len(c.instances)) * 100,
		})
	}
	sort.Slice(exhausted, func(i, j int) bool { return exhausted[i].Resource < exhausted[j].Resource })

	return &ResourceExhaustionError{
		Service:   svc.Name(),
		Task:      t.Name,
		Index:     n,
		Total:     svc.Size(),
		Instances: len(c.instances),
		Exhausted: exhausted,
	}
}
