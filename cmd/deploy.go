package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/consim/sim"
	"github.com/inference-sim/consim/sim/cluster"
	"github.com/inference-sim/consim/sim/trace"
)

// deployCmd places every service once and prints the cluster summary
var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the topology's services once and summarize resource usage",
	Run: func(cmd *cobra.Command, args []string) {
		log := setupLogging()

		topo, err := loadTopology(cmd)
		if err != nil {
			logrus.Fatalf("Failed to load topology: %v", err)
		}
		tr := newTrace()
		c, services, err := buildCluster(topo, cluster.WithTrace(tr))
		if err != nil {
			logrus.Fatalf("Invalid topology: %v", err)
		}

		log.Infof("Deploying %d services onto %d instances (seed=%d)", len(services), c.Size(), topo.Seed)
		if err := deployAll(cmd.OutOrStdout(), c, services, tr); err != nil {
			log.Fatalf("Deploy failed:\n%v", err)
		}
		log.Info("Deploy complete.")
	},
}

// deployAll deploys services in order and writes the summary. The first
// exhaustion is returned, after printing the summary of what was placed.
func deployAll(w io.Writer, c *cluster.Cluster, services []*sim.Service, tr *trace.PlacementTrace) error {
	var deployErr error
	for _, svc := range services {
		if err := c.Deploy(svc); err != nil {
			deployErr = fmt.Errorf("service %s: %w", svc.Name(), err)
			break
		}
		logrus.Debugf("deployed %s: %d tasks, %.2f vCPU, %dMB", svc.Name(), svc.Size(), sim.ToVCPU(svc.CPU()), svc.Mem())
	}

	summary := cluster.Summarize(c)
	if err := summary.Write(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n  Instance cpu utilization p50 %.1f%% p95 %.1f%% max %.1f%%\n",
		summary.CPUUtilization.P50, summary.CPUUtilization.P95, summary.CPUUtilization.Max)
	fmt.Fprintf(w, "  Instance mem utilization p50 %.1f%% p95 %.1f%% max %.1f%%\n",
		summary.MemUtilization.P50, summary.MemUtilization.P95, summary.MemUtilization.Max)

	if tr != nil {
		writeTraceSummary(w, trace.Summarize(tr))
	}
	return deployErr
}

func writeTraceSummary(w io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintf(w, "\nPlacement Trace\n")
	fmt.Fprintf(w, "  %d placements on %d instances, %d exhaustions\n",
		ts.TotalPlacements, ts.UniqueTargets, ts.TotalExhaustions)
	fmt.Fprintf(w, "  Eligible instances per placement: mean %.1f, min %d\n",
		ts.MeanCandidates, ts.MinCandidates)
}
