package cmd

import (
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/consim/sim"
	"github.com/inference-sim/consim/sim/cluster"
	"github.com/inference-sim/consim/sim/trace"
)

var (
	// CLI flags shared by deploy and simulate
	seed         int64  // Seed for random placement
	logLevel     string // Log verbosity level
	topologyPath string // YAML topology file
	presetName   string // Built-in topology name
	traceLevel   string // Placement trace level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "consim",
	Short: "Placement simulator for tasks on resource-constrained instances",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging applies --log and returns a logger tagged with a fresh run ID.
func setupLogging() *logrus.Entry {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
	return logrus.WithField("run", uuid.NewString())
}

// loadTopology resolves --topology / --preset and applies --seed when given.
func loadTopology(cmd *cobra.Command) (*sim.Topology, error) {
	var (
		topo *sim.Topology
		err  error
	)
	switch {
	case topologyPath != "" && cmd.Flags().Changed("preset"):
		logrus.Fatalf("--topology and --preset are mutually exclusive")
	case topologyPath != "":
		topo, err = sim.LoadTopology(topologyPath)
	default:
		topo, err = sim.Preset(presetName)
	}
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("seed") {
		topo.Seed = seed
	}
	return topo, nil
}

// buildCluster creates the cluster and services described by topo.
func buildCluster(topo *sim.Topology, opts ...cluster.Option) (*cluster.Cluster, []*sim.Service, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(topo.Seed))
	instances, services, err := topo.Build(rng)
	if err != nil {
		return nil, nil, err
	}
	opts = append([]cluster.Option{cluster.WithRNG(rng)}, opts...)
	return cluster.New(instances, opts...), services, nil
}

// newTrace validates --trace and returns a trace, or nil when tracing is off.
func newTrace() *trace.PlacementTrace {
	if !trace.IsValidTraceLevel(traceLevel) {
		logrus.Fatalf("Invalid trace level: %s", traceLevel)
	}
	cfg := trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}
	if !cfg.Enabled() {
		return nil
	}
	return trace.NewPlacementTrace(cfg)
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for random placement (overrides the topology seed)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&topologyPath, "topology", "", "Path to a YAML topology file")
	rootCmd.PersistentFlags().StringVar(&presetName, "preset", "example", "Built-in topology to use when --topology is not set")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "none", "Placement trace level (none, decisions)")

	rootCmd.AddCommand(deployCmd, simulateCmd, presetsCmd)
}
