package cmd

import (
	"io"

	"github.com/fatih/color"

	"github.com/inference-sim/consim/sim/cluster"
)

// progressPrinter writes one mark per trial: "." for every trial, preceded
// by a red "F" when the trial ran out of capacity.
type progressPrinter struct {
	w    io.Writer
	fail *color.Color
}

func newProgressPrinter(w io.Writer, plain bool) *progressPrinter {
	fail := color.New(color.FgRed, color.Bold)
	if plain {
		fail.DisableColor()
	}
	return &progressPrinter{w: w, fail: fail}
}

// Mark is a cluster.Simulator Progress callback.
func (p *progressPrinter) Mark(_ int, err *cluster.ResourceExhaustionError) {
	if err != nil {
		_, _ = p.fail.Fprint(p.w, "F")
	}
	_, _ = io.WriteString(p.w, ".")
}
