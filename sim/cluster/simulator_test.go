package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/consim/sim"
	"github.com/inference-sim/consim/sim/trace"
)

// fragmentingServices returns a random service of n 3-cpu tasks followed by
// a service that needs n instances with at least 7 cpu free. On n instances
// of 10 cpu the second service only fits if the first put exactly one task
// on every instance.
func fragmentingServices(n int, strategy sim.StrategyKind) []*sim.Service {
	return []*sim.Service{
		sim.NewService(n, sim.NewTask("small", 3, 1), sim.WithStrategy(strategy)),
		sim.NewService(n, sim.NewTask("big", 6, 1)),
	}
}

// TestSimulate_AdequateCapacity_NoFailures covers 50 roomy instances,
// least-loaded placement and 50 trials.
func TestSimulate_AdequateCapacity_NoFailures(t *testing.T) {
	// GIVEN 50 instances and services that fit comfortably
	c := New(uniformInstances(50, 4*sim.VCPU, 7602))
	services := []*sim.Service{
		sim.NewService(50, sim.NewDistinctTask("consul", sim.VCPU/4, 128)),
		sim.NewService(100, sim.NewTask("web", sim.VCPU, 1024), sim.WithStrategy(sim.StrategyLeastLoaded)),
	}
	pristine := snapshot(c)

	var afterReset [][]freeState
	s := NewSimulator(c, services)
	s.Progress = func(_ int, err *ResourceExhaustionError) {
		assert.Nil(t, err)
		afterReset = append(afterReset, snapshot(c))
	}

	// WHEN simulated for 50 trials
	report := s.Simulate(50)

	// THEN nothing fails and every post-reset snapshot is pristine
	assert.Equal(t, 50, report.Runs)
	assert.Equal(t, 50, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Zero(t, report.FailureRate())
	assert.Empty(t, report.Errors)
	require.Len(t, afterReset, 50)
	for i, snap := range afterReset {
		if diff := cmp.Diff(pristine, snap); diff != "" {
			t.Fatalf("trial %d: state after reset differs (-want +got):\n%s", i, diff)
		}
	}
}

// TestSimulate_TightCapacity_RandomFails covers tight capacity with random
// placement over 1000 trials: failures are captured, never propagated.
func TestSimulate_TightCapacity_RandomFails(t *testing.T) {
	c := New(uniformInstances(10, 10, 100), WithSeed(1))
	s := NewSimulator(c, fragmentingServices(10, sim.StrategyRandom))

	report := s.Simulate(1000)

	assert.Equal(t, 1000, report.Runs)
	assert.Greater(t, report.Failed, 0)
	assert.Greater(t, report.FailureRate(), 0.0)
	assert.Equal(t, report.Runs, report.Succeeded+report.Failed)
	assert.Len(t, report.Errors, report.Failed)
	for _, err := range report.Errors {
		assert.Equal(t, "big", err.Task)
		assert.Equal(t, 10, err.ExhaustedCount(sim.ResourceCPU), "every instance is out of cpu")
		assert.Zero(t, err.ExhaustedCount(sim.ResourceMem))
	}
	assert.Empty(t, c.Services(), "cluster is reset after the last trial")
}

func TestSimulate_TightCapacity_LeastLoadedNeverFails(t *testing.T) {
	c := New(uniformInstances(10, 10, 100))
	report := NewSimulator(c, fragmentingServices(10, sim.StrategyLeastLoaded)).Simulate(100)

	assert.Equal(t, 0, report.Failed)
}

func TestSimulate_FailureSkipsRemainingServices(t *testing.T) {
	// GIVEN a first service that cannot fit and a second that would
	pt := trace.NewPlacementTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	c := New([]*sim.Instance{sim.NewInstance(10, 10)}, WithTrace(pt))
	services := []*sim.Service{
		sim.NewService(2, sim.NewTask("web", 5, 5)),
		sim.NewService(1, sim.NewTask("tiny", 1, 1)),
	}

	// WHEN one trial runs
	report := NewSimulator(c, services).Simulate(1)

	// THEN the trial fails and "tiny" was never placed
	assert.Equal(t, 1, report.Failed)
	for _, p := range pt.Placements {
		assert.NotEqual(t, "tiny", p.Service)
	}
	assert.Equal(t, 0, c.Instances()[0].TaskCount())
}

func TestSimulate_DefaultTrials(t *testing.T) {
	c := New(uniformInstances(2, 10, 10))
	report := NewSimulator(c, []*sim.Service{sim.NewService(1, sim.NewTask("a", 1, 1))}).Simulate(0)

	assert.Equal(t, DefaultTrials, report.Requested)
	assert.Equal(t, DefaultTrials, report.Runs)
}

func TestSimulateContext_CancelledBetweenTrials(t *testing.T) {
	// GIVEN a simulation that cancels itself after the second trial
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := New(uniformInstances(2, 10, 10))
	s := NewSimulator(c, []*sim.Service{sim.NewService(1, sim.NewTask("a", 1, 1))})
	s.Progress = func(trial int, _ *ResourceExhaustionError) {
		if trial == 1 {
			cancel()
		}
	}

	// WHEN run for 10 trials
	report, err := s.SimulateContext(ctx, 10)

	// THEN it stops with the finished trials reported
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 10, report.Requested)
	assert.Equal(t, 2, report.Runs)
	assert.Equal(t, 0, c.Instances()[0].TaskCount()+c.Instances()[1].TaskCount())
}

func TestSimulate_MetricsCountTrialOutcomes(t *testing.T) {
	m := NewMetrics()
	c := New([]*sim.Instance{sim.NewInstance(10, 10)}, WithMetrics(m))
	s := NewSimulator(c, []*sim.Service{sim.NewService(2, sim.NewTask("web", 5, 5))})
	s.Metrics = m

	s.Simulate(3)

	assertCounter(t, 3, m.Trials.WithLabelValues(outcomeFailure))
	assertCounter(t, 0, m.Trials.WithLabelValues(outcomeSuccess))
	assertCounter(t, 3, m.Exhaustions.WithLabelValues("web"))
	assertCounter(t, 3, m.TasksPlaced.WithLabelValues("web", "least-loaded"))
}
