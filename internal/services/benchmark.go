package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type CreateBenchmarkInput struct {
	Name              string   `json:"name"`
	Scenario          string   `json:"scenario"`
	TargetRoles       []string `json:"target_roles"`
	QuestionsPerStage int      `json:"questions_per_stage"`
}

type UpdateBenchmarkInput struct {
	Name              *string   `json:"name,omitempty"`
	Scenario          *string   `json:"scenario,omitempty"`
	TargetRoles       *[]string `json:"target_roles,omitempty"`
	QuestionsPerStage *int      `json:"questions_per_stage,omitempty"`
}

type BenchmarkService interface {
	Create(ctx context.Context, projectID uuid.UUID, in CreateBenchmarkInput) (*types.Benchmark, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (*types.Benchmark, error)
	List(ctx context.Context, projectID uuid.UUID) ([]*types.Benchmark, int64, error)
	Update(ctx context.Context, projectID, id uuid.UUID, in UpdateBenchmarkInput) (*types.Benchmark, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
	Activate(ctx context.Context, projectID, id uuid.UUID) (*types.Benchmark, error)
	Archive(ctx context.Context, projectID, id uuid.UUID) (*types.Benchmark, error)
}

type benchmarkService struct {
	db            *gorm.DB
	log           *logger.Logger
	benchmarkRepo repos.BenchmarkRepo
	questionRepo  repos.QuestionRepo
	versionRepo   repos.BenchmarkVersionRepo
	versionStore  VersionStoreService
}

func NewBenchmarkService(
	db *gorm.DB,
	baseLog *logger.Logger,
	benchmarkRepo repos.BenchmarkRepo,
	questionRepo repos.QuestionRepo,
	versionRepo repos.BenchmarkVersionRepo,
	versionStore VersionStoreService,
) BenchmarkService {
	return &benchmarkService{
		db:            db,
		log:           baseLog.With("service", "BenchmarkService"),
		benchmarkRepo: benchmarkRepo,
		questionRepo:  questionRepo,
		versionRepo:   versionRepo,
		versionStore:  versionStore,
	}
}

func (s *benchmarkService) Create(ctx context.Context, projectID uuid.UUID, in CreateBenchmarkInput) (*types.Benchmark, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if in.QuestionsPerStage <= 0 {
		in.QuestionsPerStage = 3
	}

	benchmark := &types.Benchmark{
		ID:                uuid.New(),
		ProjectID:         projectID,
		Name:              strings.TrimSpace(in.Name),
		Scenario:          in.Scenario,
		TargetRoles:       types.StringList(in.TargetRoles),
		QuestionsPerStage: in.QuestionsPerStage,
		Status:            types.BenchmarkStatusDraft,
		CurrentVersion:    "1.0",
	}

	err := s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.benchmarkRepo.Create(ctx, txx, benchmark); err != nil {
			return fmt.Errorf("create benchmark: %w", err)
		}
		_, err := s.versionStore.Snapshot(ctx, txx, benchmark, nil, types.ChangeTypeInitial, "Benchmark created")
		return err
	})
	if err != nil {
		return nil, err
	}
	return benchmark, nil
}

func (s *benchmarkService) Get(ctx context.Context, projectID, id uuid.UUID) (*types.Benchmark, error) {
	benchmark, err := s.benchmarkRepo.GetByID(ctx, nil, projectID, id)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		return nil, apperr.NotFound("benchmark", id)
	}
	return benchmark, nil
}

func (s *benchmarkService) List(ctx context.Context, projectID uuid.UUID) ([]*types.Benchmark, int64, error) {
	return s.benchmarkRepo.ListByProject(ctx, nil, projectID)
}

// Update edits benchmark metadata and snapshots the change. The question set
// itself is untouched, so total_questions stays as-is.
func (s *benchmarkService) Update(ctx context.Context, projectID, id uuid.UUID, in UpdateBenchmarkInput) (*types.Benchmark, error) {
	benchmark, err := s.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		benchmark.Name = strings.TrimSpace(*in.Name)
	}
	if in.Scenario != nil {
		benchmark.Scenario = *in.Scenario
	}
	if in.TargetRoles != nil {
		benchmark.TargetRoles = types.StringList(*in.TargetRoles)
	}
	if in.QuestionsPerStage != nil {
		if *in.QuestionsPerStage <= 0 {
			return nil, apperr.Validation("questions_per_stage must be positive")
		}
		benchmark.QuestionsPerStage = *in.QuestionsPerStage
	}

	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.benchmarkRepo.Update(ctx, txx, benchmark); err != nil {
			return fmt.Errorf("update benchmark: %w", err)
		}
		questions, err := s.questionRepo.ListByBenchmark(ctx, txx, id)
		if err != nil {
			return err
		}
		_, err = s.versionStore.Snapshot(ctx, txx, benchmark, questions, types.ChangeTypeBenchmarkUpdated, "Benchmark settings updated")
		return err
	})
	if err != nil {
		return nil, err
	}
	return benchmark, nil
}

func (s *benchmarkService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	benchmark, err := s.Get(ctx, projectID, id)
	if err != nil {
		return err
	}
	if benchmark.Status == types.BenchmarkStatusRunning {
		return apperr.InvalidState("benchmark %s has a run in flight", id)
	}
	return s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.questionRepo.DeleteByBenchmark(ctx, txx, id); err != nil {
			return err
		}
		if err := s.versionRepo.DeleteByBenchmark(ctx, txx, id); err != nil {
			return err
		}
		return s.benchmarkRepo.Delete(ctx, txx, id)
	})
}

// Activate marks a benchmark as the project's active one; any other active
// benchmark in the project is demoted.
func (s *benchmarkService) Activate(ctx context.Context, projectID, id uuid.UUID) (*types.Benchmark, error) {
	benchmark, err := s.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if benchmark.Status == types.BenchmarkStatusArchived {
		return nil, apperr.InvalidState("benchmark %s is archived", id)
	}
	err = s.db.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := s.benchmarkRepo.DeactivateOthers(ctx, txx, projectID, id); err != nil {
			return err
		}
		return s.benchmarkRepo.UpdateFields(ctx, txx, id, map[string]interface{}{"is_active": true})
	})
	if err != nil {
		return nil, err
	}
	benchmark.IsActive = true
	return benchmark, nil
}

// Archive soft-retires a benchmark: it keeps its history but is excluded from
// new runs.
func (s *benchmarkService) Archive(ctx context.Context, projectID, id uuid.UUID) (*types.Benchmark, error) {
	benchmark, err := s.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if !benchmark.Status.CanTransitionTo(types.BenchmarkStatusArchived) {
		return nil, apperr.InvalidState("benchmark in status %q cannot be archived", benchmark.Status)
	}
	if err := s.benchmarkRepo.UpdateFields(ctx, nil, id, map[string]interface{}{
		"status":    types.BenchmarkStatusArchived,
		"is_active": false,
	}); err != nil {
		return nil, err
	}
	benchmark.Status = types.BenchmarkStatusArchived
	benchmark.IsActive = false
	return benchmark, nil
}
