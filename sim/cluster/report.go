package cluster

import (
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/consim/sim"
)

// SimulationReport aggregates the outcome of Simulator trials.
type SimulationReport struct {
	Requested int // trials asked for
	Runs      int // trials completed
	Succeeded int
	Failed    int
	// Errors holds the exhaustion that ended each failed trial, in trial order.
	Errors []*ResourceExhaustionError
}

func (r *SimulationReport) record(err *ResourceExhaustionError) {
	r.Runs++
	if err == nil {
		r.Succeeded++
		return
	}
	r.Failed++
	r.Errors = append(r.Errors, err)
}

// FailureRate returns the percentage of completed trials that failed.
func (r *SimulationReport) FailureRate() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.Failed) / float64(r.Runs) * 100
}

// FailureRateInterval returns the Wilson score interval of the failure rate,
// in percent, at the given two-sided confidence level (e.g. 0.95).
// With no completed trials the interval is [0, 100].
// Panics if confidence is not in (0, 1).
func (r *SimulationReport) FailureRateInterval(confidence float64) (lo, hi float64) {
	if !(confidence > 0 && confidence < 1) {
		panic(fmt.Sprintf("FailureRateInterval: confidence must be in (0, 1), got %v", confidence))
	}
	if r.Runs == 0 {
		return 0, 100
	}
	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	n := float64(r.Runs)
	p := float64(r.Failed) / n
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	lo = math.Max(0, center-half) * 100
	hi = math.Min(1, center+half) * 100
	return lo, hi
}

// ExhaustedByResource counts, per resource, the failed trials in which at
// least one instance was out of that resource.
func (r *SimulationReport) ExhaustedByResource() map[sim.Resource]int {
	out := make(map[sim.Resource]int)
	for _, err := range r.Errors {
		for _, e := range err.Exhausted {
			if e.Count > 0 {
				out[e.Resource]++
			}
		}
	}
	return out
}

// FailureProgress describes how far into the failing service each failed
// trial got, as a percentage of the service's tasks placed before exhaustion.
func (r *SimulationReport) FailureProgress() Distribution {
	values := make([]float64, 0, len(r.Errors))
	for _, err := range r.Errors {
		values = append(values, float64(err.Index)/float64(err.Total)*100)
	}
	return NewDistribution(values)
}

// Write prints the report:
//
//	After 100 runs, 97 succeeded, 3 failed (3.00% failure rate)
//	with the following errors:
//	<one diagnostic per failed trial>
func (r *SimulationReport) Write(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "After %d runs, %d succeeded, %d failed (%.2f%% failure rate)\n",
		r.Runs, r.Succeeded, r.Failed, r.FailureRate())
	if len(r.Errors) > 0 {
		b.WriteString("with the following errors:\n")
	}
	for _, err := range r.Errors {
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the report written by Write.
func (r *SimulationReport) String() string {
	var b strings.Builder
	_ = r.Write(&b)
	return b.String()
}
