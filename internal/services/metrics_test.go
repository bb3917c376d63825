package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

func floatPtr(f float64) *float64 { return &f }

func completedRun(benchmarkID uuid.UUID, createdAt time.Time, rate float64, total int, engines ...string) *types.Run {
	return &types.Run{
		ID:          uuid.New(),
		BenchmarkID: benchmarkID,
		Engines:     types.StringList(engines),
		Status:      types.RunStatusCompleted,
		Summary: types.RunSummary{
			VisibilityRate: floatPtr(rate),
			TotalResults:   intPtr(total),
		},
		CreatedAt: createdAt,
	}
}

func TestBuildTrend_BucketsAndNewBenchmarks(t *testing.T) {
	benchA := uuid.New()
	benchB := uuid.New()
	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	runs := []*types.Run{
		completedRun(benchA, day1, 0.5, 4, "chatgpt"),
		completedRun(benchA, day2, 0.75, 4, "chatgpt"),
		completedRun(benchB, day2, 0.25, 4, "chatgpt"),
	}

	trend := BuildTrend(runs, "")

	if len(trend) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(trend))
	}
	if trend[0].Date != "2025-06-01" || trend[1].Date != "2025-06-02" {
		t.Fatalf("buckets out of order: %s, %s", trend[0].Date, trend[1].Date)
	}
	if trend[0].BenchmarkCount != 1 || trend[0].NewBenchmarks != 1 {
		t.Fatalf("day1: got benchmarks=%d new=%d", trend[0].BenchmarkCount, trend[0].NewBenchmarks)
	}
	// Day 2 sees both benchmarks but only B for the first time.
	if trend[1].BenchmarkCount != 2 || trend[1].NewBenchmarks != 1 {
		t.Fatalf("day2: got benchmarks=%d new=%d", trend[1].BenchmarkCount, trend[1].NewBenchmarks)
	}
	// Equal weights: (0.75*4 + 0.25*4) / 8 = 0.5.
	if trend[1].VisibilityRate != 0.5 {
		t.Fatalf("day2 visibility: got %f, want 0.5", trend[1].VisibilityRate)
	}
}

func TestBuildTrend_EngineFilter(t *testing.T) {
	bench := uuid.New()
	day := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	runs := []*types.Run{
		completedRun(bench, day, 0.5, 4, "chatgpt"),
		completedRun(bench, day, 1.0, 4, "claude"),
	}

	trend := BuildTrend(runs, "claude")
	if len(trend) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(trend))
	}
	if trend[0].RunCount != 1 || trend[0].VisibilityRate != 1.0 {
		t.Fatalf("filter leaked: runs=%d rate=%f", trend[0].RunCount, trend[0].VisibilityRate)
	}
}

func TestTrendDeltas_OmittedWithSinglePeriod(t *testing.T) {
	visibility, ranking := TrendDeltas([]TrendPoint{{VisibilityRate: 0.5}})
	if visibility != nil || ranking != nil {
		t.Fatalf("expected both deltas omitted for a single period")
	}
}

func TestTrendDeltas_RankingOmittedWhenEitherPeriodLacksData(t *testing.T) {
	trend := []TrendPoint{
		{VisibilityRate: 0.4},
		{VisibilityRate: 0.6, AvgRanking: floatPtr(2.0)},
	}

	visibility, ranking := TrendDeltas(trend)

	if visibility == nil || *visibility-0.2 > 1e-9 || *visibility-0.2 < -1e-9 {
		t.Fatalf("expected visibility delta 0.2, got %v", visibility)
	}
	if ranking != nil {
		t.Fatalf("expected ranking delta omitted, got %v", *ranking)
	}
}

func TestTrendDeltas_BothPresent(t *testing.T) {
	trend := []TrendPoint{
		{VisibilityRate: 0.4, AvgRanking: floatPtr(3.0)},
		{VisibilityRate: 0.6, AvgRanking: floatPtr(2.0)},
	}

	_, ranking := TrendDeltas(trend)
	if ranking == nil || *ranking != -1.0 {
		t.Fatalf("expected ranking delta -1.0, got %v", ranking)
	}
}
