package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/consim/sim"
)

var presetsVerbose bool // Print each preset as YAML

// presetsCmd lists the built-in topologies
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List built-in topologies",
	Run: func(cmd *cobra.Command, args []string) {
		if err := listPresets(cmd.OutOrStdout(), presetsVerbose); err != nil {
			logrus.Fatalf("Failed to list presets: %v", err)
		}
	},
}

// listPresets writes one line per preset, or the full YAML when verbose.
// The YAML is a valid --topology file.
func listPresets(w io.Writer, verbose bool) error {
	for _, name := range sim.PresetNames() {
		topo, err := sim.Preset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d instances, %d services\n", name, topo.InstanceCount(), len(topo.Services))
		if !verbose {
			continue
		}
		data, err := yaml.Marshal(topo)
		if err != nil {
			return fmt.Errorf("marshaling preset %s: %w", name, err)
		}
		fmt.Fprintf(w, "---\n%s\n", data)
	}
	return nil
}

func init() {
	presetsCmd.Flags().BoolVarP(&presetsVerbose, "verbose", "v", false, "Print each preset as YAML")
}
