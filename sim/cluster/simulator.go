package cluster

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/consim/sim"
)

// DefaultTrials is the number of trials Simulate runs when asked for none.
const DefaultTrials = 100

// Simulator deploys the same list of services onto a cluster over and over,
// because some strategies are non-deterministic, and counts how often the
// cluster runs out of capacity.
//
// Thread-safety: NOT thread-safe. The cluster must not be used elsewhere
// while a simulation runs.
type Simulator struct {
	cluster  *Cluster
	services []*sim.Service

	// Progress, if set, is called after every trial with the trial index and
	// the exhaustion that failed it (nil on success).
	Progress func(trial int, err *ResourceExhaustionError)
	// Metrics, if set, counts trial outcomes.
	Metrics *Metrics
}

// NewSimulator creates a Simulator over c deploying services in order.
func NewSimulator(c *Cluster, services []*sim.Service) *Simulator {
	return &Simulator{cluster: c, services: services}
}

// Cluster returns the simulated cluster.
func (s *Simulator) Cluster() *Cluster { return s.cluster }

// Services returns the services deployed in every trial.
func (s *Simulator) Services() []*sim.Service { return s.services }

// Simulate runs n trials (DefaultTrials if n <= 0) and reports the outcome.
func (s *Simulator) Simulate(n int) *SimulationReport {
	report, err := s.SimulateContext(context.Background(), n)
	if err != nil {
		// Background is never cancelled and Deploy only fails with exhaustion.
		panic(fmt.Sprintf("Simulate: %v", err))
	}
	return report
}

// SimulateContext runs n trials (DefaultTrials if n <= 0). ctx is checked
// between trials only; a trial always runs to completion. On cancellation the
// report covers the trials that finished and ctx.Err() is returned.
//
// Each trial deploys every service in order. A ResourceExhaustionError ends
// the trial as a failure and is captured in the report; the remaining
// services of that trial are skipped. The cluster is reset after every trial.
func (s *Simulator) SimulateContext(ctx context.Context, n int) (*SimulationReport, error) {
	if n <= 0 {
		n = DefaultTrials
	}
	report := &SimulationReport{Requested: n}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			logrus.Debugf("simulation cancelled after %d of %d trials", i, n)
			return report, err
		}

		exhausted, err := s.trial()
		s.cluster.Reset()
		if err != nil {
			return report, fmt.Errorf("trial %d: %w", i, err)
		}

		report.record(exhausted)
		s.Metrics.observeTrial(exhausted != nil)
		if exhausted != nil {
			logrus.Debugf("trial %d failed: %s", i, exhausted.Error())
		}
		if s.Progress != nil {
			s.Progress(i, exhausted)
		}
	}

	logrus.Debugf("simulation finished: %d runs, %d failed", report.Runs, report.Failed)
	return report, nil
}

// trial deploys every service once. Exhaustion is returned as the first
// value; any other error is unexpected and returned as the second.
func (s *Simulator) trial() (*ResourceExhaustionError, error) {
	for _, svc := range s.services {
		err := s.cluster.Deploy(svc)
		if err == nil {
			continue
		}
		var exhausted *ResourceExhaustionError
		if errors.As(err, &exhausted) {
			return exhausted, nil
		}
		return nil, err
	}
	return nil, nil
}
