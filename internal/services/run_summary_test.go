package services

import (
	"testing"

	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

func intPtr(n int) *int { return &n }

func TestComputeSummary_TwoQuestionsTwoEngines(t *testing.T) {
	// 2 questions x 2 engines: 3 brand mentions (rankings 1, 2, nil) and one
	// dangerous miss.
	results := []*types.SimulationResult{
		{BrandMentioned: true, Ranking: intPtr(1)},
		{BrandMentioned: true, Ranking: intPtr(2)},
		{BrandMentioned: true},
		{BrandMentioned: false, CompetitorMentioned: true},
	}

	summary := ComputeSummary(results)

	if summary.TotalResults == nil || *summary.TotalResults != 4 {
		t.Fatalf("expected total 4, got %v", summary.TotalResults)
	}
	if summary.VisibilityRate == nil || *summary.VisibilityRate != 0.75 {
		t.Fatalf("expected visibility 0.75, got %v", summary.VisibilityRate)
	}
	if summary.DangerCount == nil || *summary.DangerCount != 1 {
		t.Fatalf("expected danger 1, got %v", summary.DangerCount)
	}
	if summary.AvgRanking == nil || *summary.AvgRanking != 1.5 {
		t.Fatalf("expected avg ranking 1.5, got %v", summary.AvgRanking)
	}
}

func TestComputeSummary_NoRankedBrandMentions(t *testing.T) {
	results := []*types.SimulationResult{
		{BrandMentioned: true},
		{BrandMentioned: false},
	}

	summary := ComputeSummary(results)

	if summary.AvgRanking != nil {
		t.Fatalf("expected nil avg ranking, got %v", *summary.AvgRanking)
	}
	if summary.VisibilityRate == nil || *summary.VisibilityRate != 0.5 {
		t.Fatalf("expected visibility 0.5, got %v", summary.VisibilityRate)
	}
}

func TestComputeSummary_FailedResultsExcluded(t *testing.T) {
	results := []*types.SimulationResult{
		{BrandMentioned: true, Ranking: intPtr(2)},
		{Failed: true, FailureReason: "timeout"},
		{Failed: true, CompetitorMentioned: true},
	}

	summary := ComputeSummary(results)

	if *summary.TotalResults != 1 {
		t.Fatalf("expected failed pairs excluded from total, got %d", *summary.TotalResults)
	}
	if *summary.VisibilityRate != 1.0 {
		t.Fatalf("expected visibility 1.0, got %f", *summary.VisibilityRate)
	}
	if *summary.DangerCount != 0 {
		t.Fatalf("failed dangerous result must not count, got %d", *summary.DangerCount)
	}
}

func TestComputeSummary_Empty(t *testing.T) {
	summary := ComputeSummary(nil)
	if *summary.VisibilityRate != 0.0 {
		t.Fatalf("expected 0.0 rate for empty run, got %f", *summary.VisibilityRate)
	}
	if summary.AvgRanking != nil {
		t.Fatalf("expected nil avg ranking for empty run")
	}
}
