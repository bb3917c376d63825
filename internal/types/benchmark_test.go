package types

import "testing"

func TestBenchmarkStatusTransitions(t *testing.T) {
	cases := []struct {
		from    BenchmarkStatus
		to      BenchmarkStatus
		allowed bool
	}{
		{BenchmarkStatusDraft, BenchmarkStatusGenerating, true},
		{BenchmarkStatusDraft, BenchmarkStatusReady, true},
		{BenchmarkStatusGenerating, BenchmarkStatusReady, true},
		{BenchmarkStatusReady, BenchmarkStatusRunning, true},
		{BenchmarkStatusRunning, BenchmarkStatusReady, true},
		{BenchmarkStatusReady, BenchmarkStatusArchived, true},
		{BenchmarkStatusDraft, BenchmarkStatusRunning, false},
		{BenchmarkStatusRunning, BenchmarkStatusArchived, false},
		{BenchmarkStatusArchived, BenchmarkStatusReady, false},
		{BenchmarkStatusGenerating, BenchmarkStatusRunning, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestSimulationResultDangerous(t *testing.T) {
	dangerous := SimulationResult{CompetitorMentioned: true, BrandMentioned: false}
	if !dangerous.Dangerous() {
		t.Fatal("competitor without brand must be dangerous")
	}
	safe := SimulationResult{CompetitorMentioned: true, BrandMentioned: true}
	if safe.Dangerous() {
		t.Fatal("co-mention with brand present is not dangerous")
	}
}
