package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/consim/sim"
	"github.com/inference-sim/consim/sim/cluster"
	"github.com/inference-sim/consim/sim/trace"
)

var (
	trials     int     // Number of trials
	confidence float64 // Confidence level of the failure-rate interval
	metricsOut string  // Prometheus text output path
	noColor    bool    // Disable colored progress marks
)

// simulateCmd runs repeated trials of the topology
var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Deploy the topology's services over many trials and report the failure rate",
	Run: func(cmd *cobra.Command, args []string) {
		log := setupLogging()

		if trials <= 0 {
			logrus.Fatalf("--trials must be positive, got %d", trials)
		}
		if !(confidence > 0 && confidence < 1) {
			logrus.Fatalf("--confidence must be in (0, 1), got %v", confidence)
		}

		topo, err := loadTopology(cmd)
		if err != nil {
			logrus.Fatalf("Failed to load topology: %v", err)
		}

		var metrics *cluster.Metrics
		if metricsOut != "" {
			metrics = cluster.NewMetrics()
		}
		tr := newTrace()
		c, services, err := buildCluster(topo, cluster.WithMetrics(metrics), cluster.WithTrace(tr))
		if err != nil {
			logrus.Fatalf("Invalid topology: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		log.Infof("Simulating %d trials of %d services on %d instances (seed=%d)",
			trials, len(services), c.Size(), topo.Seed)

		s := cluster.NewSimulator(c, services)
		s.Metrics = metrics
		out := cmd.OutOrStdout()
		s.Progress = newProgressPrinter(out, noColor).Mark

		report, err := s.SimulateContext(ctx, trials)
		fmt.Fprintln(out)
		fmt.Fprintln(out)
		if err != nil {
			log.Warnf("Simulation stopped early: %v", err)
		}
		if err := writeReport(out, report, confidence, tr); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}

		if metrics != nil {
			if err := metrics.WriteToTextfile(metricsOut); err != nil {
				logrus.Fatalf("Failed to write metrics: %v", err)
			}
			log.Infof("Metrics written to %s", metricsOut)
		}
		log.Info("Simulation complete.")
	},
}

// writeReport prints the report followed by the confidence interval, the
// failure breakdown and, when tr is non-nil, the placement trace summary
// over all trials.
func writeReport(w io.Writer, report *cluster.SimulationReport, confidence float64, tr *trace.PlacementTrace) error {
	if err := report.Write(w); err != nil {
		return err
	}
	lo, hi := report.FailureRateInterval(confidence)
	fmt.Fprintf(w, "\nFailure rate %.0f%% confidence interval: [%.2f%%, %.2f%%]\n", confidence*100, lo, hi)
	if report.Failed > 0 {
		writeFailureBreakdown(w, report)
	}
	if tr != nil {
		writeTraceSummary(w, trace.Summarize(tr))
	}
	return nil
}

func writeFailureBreakdown(w io.Writer, report *cluster.SimulationReport) {
	byRes := report.ExhaustedByResource()
	for _, res := range []sim.Resource{sim.ResourceCPU, sim.ResourceMem} {
		if n := byRes[res]; n > 0 {
			fmt.Fprintf(w, "  %d failed runs had instances out of %s\n", n, res)
		}
	}
	progress := report.FailureProgress()
	fmt.Fprintf(w, "  Failing service placed %.1f%% of its tasks on average (min %.1f%%, max %.1f%%)\n",
		progress.Mean, progress.Min, progress.Max)
}

func init() {
	simulateCmd.Flags().IntVar(&trials, "trials", cluster.DefaultTrials, "Number of trials")
	simulateCmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Confidence level of the failure-rate interval")
	simulateCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus text metrics to this file")
	simulateCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored progress output")
}
