package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/simclient"
	"github.com/GEO-SCOPE/geoscope-backend/internal/sse"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type GenerateBenchmarkRequest struct {
	Name              string   `json:"name" binding:"required"`
	Scenario          string   `json:"scenario"`
	TargetRoles       []string `json:"target_roles"`
	QuestionsPerStage int      `json:"questions_per_stage"`
}

// EmitFunc pushes one named event to the caller's stream. The generate
// handler wires it straight to the SSE response writer.
type EmitFunc func(event sse.Event, data any)

// GenerationService builds a benchmark's question set stage by stage through
// the AI backend, streaming progress events as each question lands. The event
// order is fixed: benchmark_created, then per stage stage_start /
// question_generated* / stage_complete, then generation_complete. Any failure
// short-circuits the stream and drops the benchmark back to draft.
type GenerationService interface {
	Generate(ctx context.Context, projectID uuid.UUID, req GenerateBenchmarkRequest, emit EmitFunc) (*types.Benchmark, error)
}

type generationService struct {
	db            *gorm.DB
	log           *logger.Logger
	projectRepo   repos.ProjectRepo
	benchmarkRepo repos.BenchmarkRepo
	questionRepo  repos.QuestionRepo
	versionStore  VersionStoreService
	sim           simclient.Client
}

func NewGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	benchmarkRepo repos.BenchmarkRepo,
	questionRepo repos.QuestionRepo,
	versionStore VersionStoreService,
	sim simclient.Client,
) GenerationService {
	return &generationService{
		db:            db,
		log:           baseLog.With("service", "GenerationService"),
		projectRepo:   projectRepo,
		benchmarkRepo: benchmarkRepo,
		questionRepo:  questionRepo,
		versionStore:  versionStore,
		sim:           sim,
	}
}

func (s *generationService) Generate(ctx context.Context, projectID uuid.UUID, req GenerateBenchmarkRequest, emit EmitFunc) (*types.Benchmark, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if req.QuestionsPerStage <= 0 {
		req.QuestionsPerStage = 3
	}
	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project", projectID)
	}

	benchmark := &types.Benchmark{
		ID:                uuid.New(),
		ProjectID:         projectID,
		Name:              req.Name,
		Scenario:          req.Scenario,
		TargetRoles:       types.StringList(req.TargetRoles),
		QuestionsPerStage: req.QuestionsPerStage,
		Status:            types.BenchmarkStatusGenerating,
		CurrentVersion:    "1.0",
	}
	if _, err := s.benchmarkRepo.Create(ctx, nil, benchmark); err != nil {
		return nil, fmt.Errorf("create benchmark: %w", err)
	}
	emit(sse.EventBenchmarkCreated, benchmark)

	var all []*types.Question
	for _, stage := range types.IntentStages {
		emit(sse.EventStageStart, map[string]any{"stage": stage})

		generated, err := s.sim.GenerateQuestions(ctx, simclient.GenerateRequest{
			BrandName:         project.BrandName,
			Industry:          project.Industry,
			Scenario:          req.Scenario,
			TargetRoles:       req.TargetRoles,
			Intent:            string(stage),
			QuestionsPerStage: req.QuestionsPerStage,
		})
		if err != nil {
			s.abort(ctx, benchmark.ID)
			return nil, fmt.Errorf("generate %s questions: %w", stage, err)
		}

		batch := make([]*types.Question, 0, len(generated))
		for _, g := range generated {
			batch = append(batch, &types.Question{
				ID:          uuid.New(),
				BenchmarkID: benchmark.ID,
				Text:        g.Text,
				Intent:      stage,
				PersonaRole: g.PersonaRole,
				PersonaName: g.PersonaName,
				Keyword:     g.Keyword,
				Source:      types.QuestionSourceGenerated,
				IsRelevant:  true,
			})
		}
		if len(batch) > 0 {
			if _, err := s.questionRepo.Create(ctx, nil, batch); err != nil {
				s.abort(ctx, benchmark.ID)
				return nil, fmt.Errorf("persist %s questions: %w", stage, err)
			}
		}
		for _, q := range batch {
			emit(sse.EventQuestionGenerated, q)
		}
		all = append(all, batch...)

		emit(sse.EventStageComplete, map[string]any{"stage": stage, "count": len(batch)})
	}

	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.benchmarkRepo.UpdateFields(ctx, txx, benchmark.ID, map[string]interface{}{
			"status":          types.BenchmarkStatusReady,
			"total_questions": len(all),
		}); err != nil {
			return err
		}
		benchmark.Status = types.BenchmarkStatusReady
		benchmark.TotalQuestions = len(all)
		summary := fmt.Sprintf("Generated %d questions across %d stages", len(all), len(types.IntentStages))
		_, err := s.versionStore.Snapshot(ctx, txx, benchmark, all, types.ChangeTypeInitial, summary)
		return err
	})
	if err != nil {
		s.abort(ctx, benchmark.ID)
		return nil, fmt.Errorf("finalize generation: %w", err)
	}

	emit(sse.EventGenerationComplete, benchmark)
	s.log.Info("Benchmark generation complete", "benchmark_id", benchmark.ID, "questions", len(all))
	return benchmark, nil
}

// abort drops a half-generated benchmark back to draft so the user can retry
// or delete it; partially generated questions are kept for inspection.
func (s *generationService) abort(ctx context.Context, benchmarkID uuid.UUID) {
	if err := s.benchmarkRepo.UpdateFields(ctx, nil, benchmarkID, map[string]interface{}{
		"status": types.BenchmarkStatusDraft,
	}); err != nil {
		s.log.Error("Failed to reset benchmark after generation error", "benchmark_id", benchmarkID, "error", err)
	}
}
