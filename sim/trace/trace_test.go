package trace

import "testing"

func TestPlacementTrace_RecordPlacement_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for decisions
	pt := NewPlacementTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN a placement is recorded
	pt.RecordPlacement(PlacementRecord{
		Service:    "web",
		Task:       "web",
		TaskID:     7,
		Index:      0,
		Instance:   3,
		Strategy:   "least-loaded",
		Candidates: 12,
	})

	// THEN the trace holds one placement with the recorded data
	if len(pt.Placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(pt.Placements))
	}
	if pt.Placements[0].Instance != 3 {
		t.Errorf("expected instance 3, got %d", pt.Placements[0].Instance)
	}
	if pt.Placements[0].Candidates != 12 {
		t.Errorf("expected 12 candidates, got %d", pt.Placements[0].Candidates)
	}
	if len(pt.Exhaustions) != 0 {
		t.Errorf("expected no exhaustions, got %d", len(pt.Exhaustions))
	}
}

func TestPlacementTrace_RecordExhaustion_AppendsRecord(t *testing.T) {
	pt := NewPlacementTrace(TraceConfig{Level: TraceLevelDecisions})

	pt.RecordExhaustion(ExhaustionRecord{
		Service:   "web",
		Task:      "web",
		Index:     4,
		Total:     10,
		Exhausted: map[string]int{"cpu": 2},
	})

	if len(pt.Exhaustions) != 1 {
		t.Fatalf("expected 1 exhaustion, got %d", len(pt.Exhaustions))
	}
	if got := pt.Exhaustions[0].Exhausted["cpu"]; got != 2 {
		t.Errorf("expected 2 instances out of cpu, got %d", got)
	}
}

func TestPlacementTrace_Reset_KeepsConfig(t *testing.T) {
	pt := NewPlacementTrace(TraceConfig{Level: TraceLevelDecisions})
	pt.RecordPlacement(PlacementRecord{Service: "web"})
	pt.RecordExhaustion(ExhaustionRecord{Service: "web"})

	pt.Reset()

	if len(pt.Placements) != 0 || len(pt.Exhaustions) != 0 {
		t.Errorf("expected empty trace after reset, got %d placements and %d exhaustions",
			len(pt.Placements), len(pt.Exhaustions))
	}
	if !pt.Config.Enabled() {
		t.Error("expected config to survive reset")
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	tests := []struct {
		level TraceLevel
		want  bool
	}{
		{TraceLevelNone, false},
		{"", false},
		{TraceLevelDecisions, true},
	}
	for _, tt := range tests {
		if got := (TraceConfig{Level: tt.level}).Enabled(); got != tt.want {
			t.Errorf("Enabled(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	for _, level := range []string{"", "none", "decisions"} {
		if !IsValidTraceLevel(level) {
			t.Errorf("expected %q to be valid", level)
		}
	}
	if IsValidTraceLevel("detailed") {
		t.Error("expected \"detailed\" to be invalid")
	}
}
