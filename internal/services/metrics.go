package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

// TrendPoint is one daily bucket of the dashboard trend. BenchmarkCount is
// how many distinct benchmarks contributed runs to the bucket; NewBenchmarks
// counts those whose first-ever run landed there, so the UI can render
// "N datasets (+M new)".
type TrendPoint struct {
	Date           string   `json:"date"`
	VisibilityRate float64  `json:"visibility_rate"`
	AvgRanking     *float64 `json:"avg_ranking,omitempty"`
	RunCount       int      `json:"run_count"`
	BenchmarkCount int      `json:"benchmark_count"`
	NewBenchmarks  int      `json:"new_benchmarks"`
}

type DashboardMetrics struct {
	Trend               []TrendPoint `json:"trend"`
	VisibilityRateTrend *float64     `json:"visibility_rate_trend,omitempty"`
	AvgRankingTrend     *float64     `json:"avg_ranking_trend,omitempty"`
	TotalRuns           int          `json:"total_runs"`
}

// MetricsService is a pure projection over persisted runs; it keeps no state
// of its own, so deleting a run simply drops out of the next recompute.
type MetricsService interface {
	Dashboard(ctx context.Context, projectID uuid.UUID, engine string) (*DashboardMetrics, error)
}

type metricsService struct {
	db      *gorm.DB
	log     *logger.Logger
	runRepo repos.RunRepo
}

func NewMetricsService(db *gorm.DB, baseLog *logger.Logger, runRepo repos.RunRepo) MetricsService {
	return &metricsService{
		db:      db,
		log:     baseLog.With("service", "MetricsService"),
		runRepo: runRepo,
	}
}

func (s *metricsService) Dashboard(ctx context.Context, projectID uuid.UUID, engine string) (*DashboardMetrics, error) {
	runs, err := s.runRepo.ListCompletedByProject(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	trend := BuildTrend(runs, engine)
	visibilityDelta, rankingDelta := TrendDeltas(trend)
	return &DashboardMetrics{
		Trend:               trend,
		VisibilityRateTrend: visibilityDelta,
		AvgRankingTrend:     rankingDelta,
		TotalRuns:           len(runs),
	}, nil
}

// BuildTrend buckets completed runs by day, weighting each run's visibility
// rate by its result count so the bucket aggregate matches the per-run
// formula applied to the union of results.
func BuildTrend(runs []*types.Run, engine string) []TrendPoint {
	type bucket struct {
		weightedRate  float64
		resultWeight  float64
		rankingSum    float64
		rankingWeight float64
		runCount      int
		benchmarks    map[uuid.UUID]bool
		newBenchmarks int
	}

	firstRunDay := map[uuid.UUID]time.Time{}
	for _, run := range runs {
		if !runMatchesEngine(run, engine) {
			continue
		}
		day := run.CreatedAt.Truncate(24 * time.Hour)
		if existing, ok := firstRunDay[run.BenchmarkID]; !ok || day.Before(existing) {
			firstRunDay[run.BenchmarkID] = day
		}
	}

	buckets := map[time.Time]*bucket{}
	counted := map[uuid.UUID]bool{}
	for _, run := range runs {
		if !runMatchesEngine(run, engine) {
			continue
		}
		day := run.CreatedAt.Truncate(24 * time.Hour)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{benchmarks: map[uuid.UUID]bool{}}
			buckets[day] = b
		}
		b.runCount++
		b.benchmarks[run.BenchmarkID] = true
		if firstRunDay[run.BenchmarkID].Equal(day) && !counted[run.BenchmarkID] {
			b.newBenchmarks++
			counted[run.BenchmarkID] = true
		}

		weight := 1.0
		if run.Summary.TotalResults != nil && *run.Summary.TotalResults > 0 {
			weight = float64(*run.Summary.TotalResults)
		}
		if run.Summary.VisibilityRate != nil {
			b.weightedRate += *run.Summary.VisibilityRate * weight
			b.resultWeight += weight
		}
		if run.Summary.AvgRanking != nil {
			b.rankingSum += *run.Summary.AvgRanking * weight
			b.rankingWeight += weight
		}
	}

	days := make([]time.Time, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := make([]TrendPoint, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		point := TrendPoint{
			Date:           day.Format("2006-01-02"),
			RunCount:       b.runCount,
			BenchmarkCount: len(b.benchmarks),
			NewBenchmarks:  b.newBenchmarks,
		}
		if b.resultWeight > 0 {
			point.VisibilityRate = b.weightedRate / b.resultWeight
		}
		if b.rankingWeight > 0 {
			avg := b.rankingSum / b.rankingWeight
			point.AvgRanking = &avg
		}
		out = append(out, point)
	}
	return out
}

// TrendDeltas compares the latest bucket with the immediately preceding one.
// A delta is omitted, not zeroed, when either period lacks data.
func TrendDeltas(trend []TrendPoint) (visibility *float64, ranking *float64) {
	if len(trend) < 2 {
		return nil, nil
	}
	latest := trend[len(trend)-1]
	previous := trend[len(trend)-2]

	v := latest.VisibilityRate - previous.VisibilityRate
	visibility = &v

	if latest.AvgRanking != nil && previous.AvgRanking != nil {
		r := *latest.AvgRanking - *previous.AvgRanking
		ranking = &r
	}
	return visibility, ranking
}

func runMatchesEngine(run *types.Run, engine string) bool {
	if engine == "" {
		return true
	}
	for _, e := range run.Engines {
		if e == engine {
			return true
		}
	}
	return false
}
