package cluster

import "github.com/inference-sim/consim/sim"

// uniformInstances creates n instances with identical capacity.
func uniformInstances(n int, cpu, mem int64) []*sim.Instance {
	out := make([]*sim.Instance, n)
	for i := range out {
		out[i] = sim.NewInstance(cpu, mem)
	}
	return out
}

// freeState is a comparable snapshot of one instance.
type freeState struct {
	FreeCPU int64
	FreeMem int64
	Tasks   int
}

// snapshot captures the free resources and task counts of every instance.
func snapshot(c *Cluster) []freeState {
	out := make([]freeState, c.Size())
	for i, inst := range c.Instances() {
		out[i] = freeState{FreeCPU: inst.FreeCPU(), FreeMem: inst.FreeMem(), Tasks: inst.TaskCount()}
	}
	return out
}
