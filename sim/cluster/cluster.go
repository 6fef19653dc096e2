// Package cluster places services onto a fixed pool of instances and runs
// repeated placement trials.
//
// Cluster.Deploy is the placement algorithm; Simulator drives it through many
// trials and reports how often the pool runs out of capacity.
package cluster

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/consim/sim"
	"github.com/inference-sim/consim/sim/trace"
)

// Cluster owns a fixed, ordered pool of instances and the services that were
// successfully deployed onto it.
//
// Thread-safety: NOT thread-safe. All methods must be called from the same goroutine.
type Cluster struct {
	instances []*sim.Instance
	index     map[*sim.Instance]int
	services  []*sim.Service
	arena     *sim.TaskArena
	rng       *sim.PartitionedRNG
	trace     *trace.PlacementTrace
	metrics   *Metrics
}

// Option configures a Cluster.
type Option func(*Cluster)

// WithSeed seeds the RNG used by random strategies.
func WithSeed(seed int64) Option {
	return func(c *Cluster) { c.rng = sim.NewPartitionedRNG(sim.NewSimulationKey(seed)) }
}

// WithRNG shares an existing PartitionedRNG (e.g. the one used to build the topology).
func WithRNG(rng *sim.PartitionedRNG) Option {
	return func(c *Cluster) { c.rng = rng }
}

// WithTrace records every placement decision into pt.
func WithTrace(pt *trace.PlacementTrace) Option {
	return func(c *Cluster) { c.trace = pt }
}

// WithMetrics reports placements and exhaustions to m.
func WithMetrics(m *Metrics) Option {
	return func(c *Cluster) { c.metrics = m }
}

// New creates a cluster over instances. The pool is copied and never resized.
// Panics if instances is empty or contains nil or duplicate entries.
func New(instances []*sim.Instance, opts ...Option) *Cluster {
	if len(instances) == 0 {
		panic("cluster.New: no instances")
	}
	c := &Cluster{
		instances: slices.Clone(instances),
		index:     make(map[*sim.Instance]int, len(instances)),
		arena:     sim.NewTaskArena(),
		rng:       sim.NewPartitionedRNG(sim.NewSimulationKey(0)),
	}
	for i, inst := range c.instances {
		if inst == nil {
			panic(fmt.Sprintf("cluster.New: instance %d is nil", i))
		}
		if _, dup := c.index[inst]; dup {
			panic(fmt.Sprintf("cluster.New: instance %d appears twice", i))
		}
		c.index[inst] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Instances returns the pool in construction order. Callers must not mutate
// the returned slice.
func (c *Cluster) Instances() []*sim.Instance { return c.instances }

// Services returns the services deployed since the last Reset, in order.
func (c *Cluster) Services() []*sim.Service { return c.services }

// Size returns the number of instances.
func (c *Cluster) Size() int { return len(c.instances) }

// IndexOf returns inst's position in the pool, or -1 if it is not part of it.
func (c *Cluster) IndexOf(inst *sim.Instance) int {
	if i, ok := c.index[inst]; ok {
		return i
	}
	return -1
}

// Deploy places every task of svc, one at a time.
//
// The set of instances able to take the current task (the eligibility cache)
// is built once, from the whole pool, for the first task. Afterwards only the
// instance chosen on the previous step can have lost eligibility, so it is
// the only one re-checked and pruned; the pool is never rescanned.
//
// Returns *ResourceExhaustionError when some task has no eligible instance.
// Tasks placed before the failure stay placed.
func (c *Cluster) Deploy(svc *sim.Service) error {
	strategy := sim.NewStrategy(svc.Strategy(), c.rng.ForSubsystem(sim.SubsystemStrategy))
	tasks := svc.Tasks(c.arena)

	var cache []*sim.Instance
	var last *sim.Instance
	built := false

	for n, task := range tasks {
		if !built {
			cache = c.eligible(task)
			built = true
		}
		if last != nil && !last.Accept(task) {
			if i := slices.Index(cache, last); i >= 0 {
				cache = slices.Delete(cache, i, i+1)
			}
		}

		last = strategy.Select(cache)
		if last == nil {
			err := c.exhaustion(svc, task, n)
			c.recordExhaustion(err)
			logrus.Debugf("deploy %s: %v", svc.Name(), err)
			return err
		}

		candidates := len(cache)
		last.Deploy(task)
		c.recordPlacement(svc, task, n, last, candidates)
	}

	c.services = append(c.services, svc)
	c.metrics.observeService()
	return nil
}

// eligible filters the whole pool for instances that accept t.
func (c *Cluster) eligible(t *sim.Task) []*sim.Instance {
	out := make([]*sim.Instance, 0, len(c.instances))
	for _, inst := range c.instances {
		if inst.Accept(t) {
			out = append(out, inst)
		}
	}
	return out
}

// Reset empties every instance and forgets deployed services and tasks.
func (c *Cluster) Reset() {
	for _, inst := range c.instances {
		inst.Reset()
	}
	c.arena.Reset()
	c.services = nil
}

func (c *Cluster) recordPlacement(svc *sim.Service, t *sim.Task, n int, inst *sim.Instance, candidates int) {
	c.metrics.observePlacement(svc, candidates)
	if c.trace == nil || !c.trace.Config.Enabled() {
		return
	}
	c.trace.RecordPlacement(trace.PlacementRecord{
		Service:    svc.Name(),
		Task:       t.Name,
		TaskID:     uint64(t.ID),
		Index:      n,
		Instance:   c.index[inst],
		Strategy:   string(svc.Strategy()),
		Candidates: candidates,
	})
}

func (c *Cluster) recordExhaustion(err *ResourceExhaustionError) {
	c.metrics.observeExhaustion(err)
	if c.trace == nil || !c.trace.Config.Enabled() {
		return
	}
	exhausted := make(map[string]int, len(err.Exhausted))
	for _, e := range err.Exhausted {
		exhausted[string(e.Resource)] = e.Count
	}
	c.trace.RecordExhaustion(trace.ExhaustionRecord{
		Service:   err.Service,
		Task:      err.Task,
		Index:     err.Index,
		Total:     err.Total,
		Exhausted: exhausted,
	})
}
