package cluster

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inference-sim/consim/sim"
)

// Metrics exports placement and trial counters in a private Prometheus
// registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	TasksPlaced      *prometheus.CounterVec
	Exhaustions      *prometheus.CounterVec
	ExhaustedByRes   *prometheus.CounterVec
	ServicesDeployed prometheus.Counter
	Trials           *prometheus.CounterVec
	Candidates       prometheus.Histogram
}

// NewMetrics creates and registers the consim metric families.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TasksPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consim",
			Name:      "tasks_placed_total",
			Help:      "Tasks committed to an instance, by service and strategy.",
		}, []string{"service", "strategy"}),
		Exhaustions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consim",
			Name:      "exhaustions_total",
			Help:      "Deploys that ran out of eligible instances, by service.",
		}, []string{"service"}),
		ExhaustedByRes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consim",
			Name:      "exhausted_instances_total",
			Help:      "Instances found out of a resource when a deploy failed, by resource.",
		}, []string{"resource"}),
		ServicesDeployed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "consim",
			Name:      "services_deployed_total",
			Help:      "Services whose every task was placed.",
		}),
		Trials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consim",
			Name:      "trials_total",
			Help:      "Simulation trials, by outcome.",
		}, []string{"outcome"}),
		Candidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "consim",
			Name:      "eligible_instances",
			Help:      "Size of the eligibility cache when a task was placed.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	m.Registry.MustRegister(m.TasksPlaced, m.Exhaustions, m.ExhaustedByRes,
		m.ServicesDeployed, m.Trials, m.Candidates)
	return m
}

// WriteToTextfile writes the registry in the Prometheus text format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

func (m *Metrics) observePlacement(svc *sim.Service, candidates int) {
	if m == nil {
		return
	}
	m.TasksPlaced.WithLabelValues(svc.Name(), string(svc.Strategy())).Inc()
	m.Candidates.Observe(float64(candidates))
}

func (m *Metrics) observeExhaustion(err *ResourceExhaustionError) {
	if m == nil {
		return
	}
	m.Exhaustions.WithLabelValues(err.Service).Inc()
	for _, r := range err.Exhausted {
		m.ExhaustedByRes.WithLabelValues(string(r.Resource)).Add(float64(r.Count))
	}
}

func (m *Metrics) observeService() {
	if m == nil {
		return
	}
	m.ServicesDeployed.Inc()
}

func (m *Metrics) observeTrial(failed bool) {
	if m == nil {
		return
	}
	if failed {
		m.Trials.WithLabelValues(outcomeFailure).Inc()
		return
	}
	m.Trials.WithLabelValues(outcomeSuccess).Inc()
}
