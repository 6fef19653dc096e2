package cluster

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/inference-sim/consim/sim"
)

// Summary is a point-in-time view of how a cluster's resources are used.
type Summary struct {
	Instances int
	// TasksPerInstance maps a task count to the number of instances running
	// exactly that many tasks.
	TasksPerInstance map[int]int

	UsedCPU  int64
	TotalCPU int64
	UsedMem  int64
	TotalMem int64

	// Per-instance utilization, in percent.
	CPUUtilization Distribution
	MemUtilization Distribution
}

// Summarize reads the current state of every instance in c.
func Summarize(c *Cluster) Summary {
	s := Summary{
		Instances:        c.Size(),
		TasksPerInstance: make(map[int]int),
	}
	cpuUtil := make([]float64, 0, c.Size())
	memUtil := make([]float64, 0, c.Size())
	for _, inst := range c.Instances() {
		s.TasksPerInstance[inst.TaskCount()]++
		s.UsedCPU += inst.UsedCPU()
		s.TotalCPU += inst.CPU()
		s.UsedMem += inst.UsedMem()
		s.TotalMem += inst.Mem()
		cpuUtil = append(cpuUtil, float64(inst.UsedCPU())/float64(inst.CPU())*100)
		memUtil = append(memUtil, float64(inst.UsedMem())/float64(inst.Mem())*100)
	}
	s.CPUUtilization = NewDistribution(cpuUtil)
	s.MemUtilization = NewDistribution(memUtil)
	return s
}

// Write prints the summary report. CPU is shown in vCPU (raw / 1024) and
// memory in GB (MB / 1000, truncated); averages divide by the instance count
// before converting.
func (s Summary) Write(w io.Writer) error {
	var b strings.Builder
	n := int64(s.Instances)

	fmt.Fprintf(&b, "Using %d instances\n\n", s.Instances)

	counts := make([]int, 0, len(s.TasksPerInstance))
	for k := range s.TasksPerInstance {
		counts = append(counts, k)
	}
	sort.Ints(counts)
	for _, k := range counts {
		fmt.Fprintf(&b, "%3d (%4.1f%%) -> %d\n", s.TasksPerInstance[k],
			float64(s.TasksPerInstance[k])/float64(s.Instances)*100, k)
	}

	b.WriteString("\nCluster Stats\n")
	fmt.Fprintf(&b, "  Using %2.1f%% of cpu (%.2f vCPU of %.2f)\n",
		float64(s.UsedCPU)/float64(s.TotalCPU)*100, sim.ToVCPU(s.UsedCPU), sim.ToVCPU(s.TotalCPU))
	fmt.Fprintf(&b, "  Using %2.1f%% of mem (%dGB of %dGB)\n",
		float64(s.UsedMem)/float64(s.TotalMem)*100, sim.ToGB(s.UsedMem), sim.ToGB(s.TotalMem))

	fmt.Fprintf(&b, "\n  Instance avg cpu usage %.2f vCPU\n", sim.ToVCPU(s.UsedCPU/n))
	fmt.Fprintf(&b, "  Instance avg cpu spec  %.2f vCPU\n", sim.ToVCPU(s.TotalCPU/n))

	fmt.Fprintf(&b, "\n  Instance avg mem usage %dMB\n", s.UsedMem/n)
	fmt.Fprintf(&b, "  Instance avg mem spec  %dMB\n", s.TotalMem/n)

	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the report written by Write.
func (s Summary) String() string {
	var b strings.Builder
	_ = s.Write(&b)
	return b.String()
}
