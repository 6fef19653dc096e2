package trace

// TraceLevel controls the verbosity of placement tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every placement and every exhaustion.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected at all.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelDecisions
}

// PlacementTrace collects decision records during deploys.
type PlacementTrace struct {
	Config      TraceConfig
	Placements  []PlacementRecord
	Exhaustions []ExhaustionRecord
}

// NewPlacementTrace creates a PlacementTrace ready for recording.
func NewPlacementTrace(config TraceConfig) *PlacementTrace {
	return &PlacementTrace{
		Config:      config,
		Placements:  make([]PlacementRecord, 0),
		Exhaustions: make([]ExhaustionRecord, 0),
	}
}

// RecordPlacement appends a placement record.
func (pt *PlacementTrace) RecordPlacement(record PlacementRecord) {
	pt.Placements = append(pt.Placements, record)
}

// RecordExhaustion appends an exhaustion record.
func (pt *PlacementTrace) RecordExhaustion(record ExhaustionRecord) {
	pt.Exhaustions = append(pt.Exhaustions, record)
}

// Reset drops all records but keeps the configuration.
func (pt *PlacementTrace) Reset() {
	pt.Placements = pt.Placements[:0]
	pt.Exhaustions = pt.Exhaustions[:0]
}
