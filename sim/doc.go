// Package sim provides the resource and placement model for consim.
//
// # Reading Guide
//
// Start with these files:
//   - task.go: Task and its PlacementPredicate variants (Plain, Distinct)
//   - instance.go: Instance capacity accounting and the strict headroom check
//   - strategy.go: the Strategy family used to pick among eligible instances
//
// # Architecture
//
// The sim package holds value types and policies; orchestration lives in
// sub-packages:
//   - sim/cluster/: the placement algorithm, exhaustion diagnostics, the
//     Monte-Carlo Simulator and text reports
//   - sim/trace/: placement decision recording
//
// Topologies (instance pools plus services) are described in YAML and loaded
// with LoadTopology, or taken from the built-in presets.
//
// # Key Interfaces
//   - PlacementPredicate: task-specific eligibility on top of resource headroom
//   - Strategy: select one instance from the eligible candidates
package sim
