package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/simclient"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

// CompetitorService produces the deep competitor breakdown for a single
// result. The analysis is expensive (extended timeout budget), so it is
// computed once and cached on the result row; repeated generate calls are
// idempotent. An upstream timeout surfaces to the caller as retryable.
type CompetitorService interface {
	Generate(ctx context.Context, projectID, runID, resultID uuid.UUID) (json.RawMessage, error)
	Get(ctx context.Context, projectID, runID, resultID uuid.UUID) (json.RawMessage, error)
}

type competitorService struct {
	db           *gorm.DB
	log          *logger.Logger
	projectRepo  repos.ProjectRepo
	runRepo      repos.RunRepo
	resultRepo   repos.SimulationResultRepo
	questionRepo repos.QuestionRepo
	sim          simclient.Client
}

func NewCompetitorService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo repos.ProjectRepo,
	runRepo repos.RunRepo,
	resultRepo repos.SimulationResultRepo,
	questionRepo repos.QuestionRepo,
	sim simclient.Client,
) CompetitorService {
	return &competitorService{
		db:           db,
		log:          baseLog.With("service", "CompetitorService"),
		projectRepo:  projectRepo,
		runRepo:      runRepo,
		resultRepo:   resultRepo,
		questionRepo: questionRepo,
		sim:          sim,
	}
}

func (s *competitorService) Generate(ctx context.Context, projectID, runID, resultID uuid.UUID) (json.RawMessage, error) {
	result, err := s.requireResult(ctx, projectID, runID, resultID)
	if err != nil {
		return nil, err
	}
	if len(result.CompetitorAnalysis) > 0 {
		return json.RawMessage(result.CompetitorAnalysis), nil
	}
	if result.Failed {
		return nil, apperr.InvalidState("cannot analyze a failed result")
	}

	project, err := s.projectRepo.GetByID(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("project", projectID)
	}

	questionText := ""
	question, err := s.questionRepo.GetByID(ctx, nil, uuid.Nil, result.QuestionID)
	if err != nil {
		return nil, err
	}
	if question != nil {
		questionText = question.Text
	}

	analysis, err := s.sim.AnalyzeCompetitors(ctx, simclient.AnalyzeRequest{
		Question:          questionText,
		SimulatedResponse: result.SimulatedResponse,
		Engine:            result.Engine,
		BrandName:         project.BrandName,
		Competitors:       []string(project.Competitors),
	})
	if err != nil {
		return nil, err
	}

	if err := s.resultRepo.UpdateFields(ctx, nil, result.ID, map[string]interface{}{
		"competitor_analysis": datatypes.JSON(analysis),
	}); err != nil {
		return nil, err
	}
	s.log.Info("Competitor analysis cached", "result_id", result.ID, "engine", result.Engine)
	return analysis, nil
}

func (s *competitorService) Get(ctx context.Context, projectID, runID, resultID uuid.UUID) (json.RawMessage, error) {
	result, err := s.requireResult(ctx, projectID, runID, resultID)
	if err != nil {
		return nil, err
	}
	if len(result.CompetitorAnalysis) == 0 {
		return nil, apperr.NotFound("competitor analysis for result", resultID)
	}
	return json.RawMessage(result.CompetitorAnalysis), nil
}

func (s *competitorService) requireResult(ctx context.Context, projectID, runID, resultID uuid.UUID) (*types.SimulationResult, error) {
	run, err := s.runRepo.GetByID(ctx, nil, projectID, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, apperr.NotFound("run", runID)
	}
	result, err := s.resultRepo.GetByID(ctx, nil, resultID)
	if err != nil {
		return nil, err
	}
	if result == nil || result.RunID != runID {
		return nil, apperr.NotFound("simulation result", resultID)
	}
	return result, nil
}
