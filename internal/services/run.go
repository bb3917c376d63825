package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/simclient"
	"github.com/GEO-SCOPE/geoscope-backend/internal/sse"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type StartRunInput struct {
	BenchmarkID uuid.UUID `json:"benchmark_id"`
	Engines     []string  `json:"engines"`
	Channels    []string  `json:"channels"`
}

type RunService interface {
	Start(ctx context.Context, projectID uuid.UUID, in StartRunInput) (*types.Run, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (*types.Run, error)
	List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.Run, int64, error)
	Results(ctx context.Context, projectID, runID uuid.UUID, limit, offset int) ([]*types.SimulationResult, int64, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
}

type runService struct {
	db          *gorm.DB
	log         *logger.Logger
	projectRepo repos.ProjectRepo
	benchRepo   repos.BenchmarkRepo
	questRepo   repos.QuestionRepo
	versionRepo repos.BenchmarkVersionRepo
	runRepo     repos.RunRepo
	resultRepo  repos.SimulationResultRepo
	sim         simclient.Client
	hub         *sse.Hub
	concurrency int
}

func NewRunService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	benchRepo repos.BenchmarkRepo,
	questRepo repos.QuestionRepo,
	versionRepo repos.BenchmarkVersionRepo,
	runRepo repos.RunRepo,
	resultRepo repos.SimulationResultRepo,
	sim simclient.Client,
	hub *sse.Hub,
	concurrency int,
) RunService {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &runService{
		db:          db,
		log:         baseLog.With("service", "RunService"),
		projectRepo: projectRepo,
		benchRepo:   benchRepo,
		questRepo:   questRepo,
		versionRepo: versionRepo,
		runRepo:     runRepo,
		resultRepo:  resultRepo,
		sim:         sim,
		hub:         hub,
		concurrency: concurrency,
	}
}

// Start pins the benchmark's current version into a new run and kicks off the
// (question, engine) fan-out. The benchmark's running status doubles as the
// mutual-exclusion flag: a second start against the same benchmark fails fast
// instead of queueing.
func (s *runService) Start(ctx context.Context, projectID uuid.UUID, in StartRunInput) (*types.Run, error) {
	if len(in.Engines) == 0 {
		return nil, apperr.Validation("at least one engine is required")
	}
	benchmark, err := s.benchRepo.GetByID(ctx, nil, projectID, in.BenchmarkID)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		return nil, apperr.NotFound("benchmark", in.BenchmarkID)
	}
	if benchmark.Status != types.BenchmarkStatusReady {
		return nil, apperr.InvalidState("benchmark %s is %q, not ready", benchmark.ID, benchmark.Status)
	}

	questions, err := s.questRepo.ListByBenchmark(ctx, nil, benchmark.ID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperr.InvalidState("benchmark %s has no questions", benchmark.ID)
	}

	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project", projectID)
	}

	channels := in.Channels
	if len(channels) == 0 {
		channels = []string{"chat"}
	}

	run := &types.Run{
		ID:               uuid.New(),
		ProjectID:        projectID,
		BenchmarkID:      benchmark.ID,
		BenchmarkVersion: benchmark.CurrentVersion,
		Engines:          types.StringList(in.Engines),
		Channels:         types.StringList(channels),
		Status:           types.RunStatusPending,
		Progress: types.RunProgress{
			Total: len(questions) * len(in.Engines),
		},
	}

	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		// Conditional update is the exclusion point; losing the race means
		// another run grabbed the benchmark first.
		res := txx.Model(&types.Benchmark{}).
			Where("id = ? AND status = ?", benchmark.ID, types.BenchmarkStatusReady).
			Update("status", types.BenchmarkStatusRunning)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.InvalidState("benchmark %s already has a run in flight", benchmark.ID)
		}
		if _, err := s.runRepo.Create(ctx, txx, run); err != nil {
			return fmt.Errorf("create run: %w", err)
		}
		return s.versionRepo.IncrementRunCount(ctx, txx, benchmark.ID, benchmark.CurrentVersion)
	})
	if err != nil {
		return nil, err
	}

	go s.execute(context.WithoutCancel(ctx), project, benchmark, run, questions)
	return run, nil
}

// execute fans the question set out across engines. A failure on one pair
// never aborts its siblings; progress counters are incremented atomically in
// the database so near-simultaneous completions cannot lose updates.
func (s *runService) execute(ctx context.Context, project *types.Project, benchmark *types.Benchmark, run *types.Run, questions []*types.Question) {
	log := s.log.With("run_id", run.ID, "benchmark_id", benchmark.ID)

	if err := s.runRepo.UpdateFields(ctx, nil, run.ID, map[string]interface{}{
		"status": types.RunStatusRunning,
	}); err != nil {
		log.Error("Failed to mark run running", "error", err)
	}

	channel := "chat"
	if len(run.Channels) > 0 {
		channel = run.Channels[0]
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, question := range questions {
		for _, engine := range run.Engines {
			question, engine := question, engine
			g.Go(func() error {
				s.executePair(gctx, project, run, question, engine, channel)
				return nil
			})
		}
	}
	_ = g.Wait()

	s.finalize(ctx, benchmark, run)
}

func (s *runService) executePair(ctx context.Context, project *types.Project, run *types.Run, question *types.Question, engine, channel string) {
	resp, err := s.sim.Simulate(ctx, simclient.SimulateRequest{
		Question:    question.Text,
		Engine:      engine,
		Channel:     channel,
		BrandName:   project.BrandName,
		Competitors: project.Competitors,
		PersonaRole: question.PersonaRole,
	})

	result := &types.SimulationResult{
		ID:         uuid.New(),
		RunID:      run.ID,
		QuestionID: question.ID,
		Engine:     engine,
		Channel:    channel,
	}

	completedDelta, failedDelta := 1, 0
	if err != nil {
		// Timeouts and backend failures downgrade to a failed pair; the
		// batch keeps going.
		s.log.Warn("Simulation pair failed", "run_id", run.ID, "question_id", question.ID, "engine", engine, "error", err)
		result.Failed = true
		result.FailureReason = err.Error()
		completedDelta, failedDelta = 0, 1
	} else {
		result.SimulatedResponse = resp.SimulatedResponse
		result.Sentiment = types.Sentiment(resp.Sentiment)
		result.BrandMentioned = resp.BrandMentioned
		result.CompetitorMentioned = resp.CompetitorMentioned
		result.CompetitorsMentioned = types.StringList(resp.CompetitorsMentioned)
		result.Ranking = resp.Ranking
		result.Citations = types.StringList(resp.Citations)
		result.RiskFlags = types.StringList(resp.RiskFlags)
		result.CTA = resp.CTA
		result.VisibilityScore = resp.VisibilityScore
	}

	if _, err := s.resultRepo.Create(ctx, nil, []*types.SimulationResult{result}); err != nil {
		s.log.Error("Failed to persist simulation result", "run_id", run.ID, "error", err)
		completedDelta, failedDelta = 0, 1
	}

	progress, err := s.runRepo.IncrementProgress(ctx, nil, run.ID, completedDelta, failedDelta)
	if err != nil {
		s.log.Error("Failed to advance run progress", "run_id", run.ID, "error", err)
		return
	}
	s.hub.Broadcast(sse.Message{
		Channel: run.ProjectID.String(),
		Event:   sse.EventRunProgress,
		Data:    map[string]interface{}{"run_id": run.ID, "progress": progress},
	})
}

// finalize computes the run summary in a single write once every pair has
// resolved, and hands the benchmark back.
func (s *runService) finalize(ctx context.Context, benchmark *types.Benchmark, run *types.Run) {
	results, err := s.resultRepo.ListByRunAll(ctx, nil, run.ID)
	if err != nil {
		s.log.Error("Failed to load results for summary", "run_id", run.ID, "error", err)
	}
	summary := ComputeSummary(results)

	updates := map[string]interface{}{
		"status":                  types.RunStatusCompleted,
		"summary_total_results":   summary.TotalResults,
		"summary_danger_count":    summary.DangerCount,
		"summary_visibility_rate": summary.VisibilityRate,
	}
	if summary.AvgRanking != nil {
		updates["summary_avg_ranking"] = *summary.AvgRanking
	}
	if err := s.runRepo.UpdateFields(ctx, nil, run.ID, updates); err != nil {
		s.log.Error("Failed to finalize run", "run_id", run.ID, "error", err)
	}

	if err := s.benchRepo.UpdateFields(ctx, nil, benchmark.ID, map[string]interface{}{
		"status": types.BenchmarkStatusReady,
	}); err != nil {
		s.log.Error("Failed to release benchmark", "benchmark_id", benchmark.ID, "error", err)
	}

	s.hub.Broadcast(sse.Message{
		Channel: run.ProjectID.String(),
		Event:   sse.EventRunCompleted,
		Data:    map[string]interface{}{"run_id": run.ID, "summary": summary},
	})
	s.log.Info("Run completed", "run_id", run.ID, "total", len(results))
}

func (s *runService) Get(ctx context.Context, projectID, id uuid.UUID) (*types.Run, error) {
	run, err := s.runRepo.GetByID(ctx, nil, projectID, id)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperr.NotFound("run", id)
	}
	return run, nil
}

func (s *runService) List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.Run, int64, error) {
	return s.runRepo.ListByProject(ctx, nil, projectID, benchmarkID)
}

func (s *runService) Results(ctx context.Context, projectID, runID uuid.UUID, limit, offset int) ([]*types.SimulationResult, int64, error) {
	if _, err := s.Get(ctx, projectID, runID); err != nil {
		return nil, 0, err
	}
	return s.resultRepo.ListByRun(ctx, nil, runID, limit, offset)
}

// Delete removes the run and its results. Historical versions and sibling
// runs are unaffected; dashboard projections recompute from what remains.
func (s *runService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	run, err := s.Get(ctx, projectID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.resultRepo.DeleteByRun(ctx, txx, run.ID); err != nil {
			return err
		}
		return s.runRepo.Delete(ctx, txx, run.ID)
	})
}

// ComputeSummary rolls per-pair results up into the run summary. Failed pairs
// are excluded from every rate and average; avg_ranking stays nil when no
// brand-mentioned result carries a ranking.
func ComputeSummary(results []*types.SimulationResult) types.RunSummary {
	total := 0
	brandMentioned := 0
	danger := 0
	rankingSum := 0
	rankingCount := 0

	for _, r := range results {
		if r.Failed {
			continue
		}
		total++
		if r.BrandMentioned {
			brandMentioned++
			if r.Ranking != nil {
				rankingSum += *r.Ranking
				rankingCount++
			}
		}
		if r.Dangerous() {
			danger++
		}
	}

	rate := 0.0
	if total > 0 {
		rate = float64(brandMentioned) / float64(total)
	}
	summary := types.RunSummary{
		VisibilityRate: &rate,
		DangerCount:    &danger,
		TotalResults:   &total,
	}
	if rankingCount > 0 {
		avg := float64(rankingSum) / float64(rankingCount)
		summary.AvgRanking = &avg
	}
	return summary
}
