package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type stubRunStore struct {
	run *types.Run
}

func (s *stubRunStore) Create(ctx context.Context, tx *gorm.DB, run *types.Run) (*types.Run, error) {
	return run, nil
}

func (s *stubRunStore) GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.Run, error) {
	if s.run != nil && s.run.ID == id && s.run.ProjectID == projectID {
		return s.run, nil
	}
	return nil, nil
}

func (s *stubRunStore) ListByProject(ctx context.Context, tx *gorm.DB, projectID, benchmarkID uuid.UUID) ([]*types.Run, int64, error) {
	return nil, 0, nil
}

func (s *stubRunStore) ListCompletedByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Run, error) {
	return nil, nil
}

func (s *stubRunStore) LatestCompletedByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Run, error) {
	return nil, nil
}

func (s *stubRunStore) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (s *stubRunStore) IncrementProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, completedDelta, failedDelta int) (types.RunProgress, error) {
	return types.RunProgress{}, nil
}

func (s *stubRunStore) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

type stubResultStore struct {
	result *types.SimulationResult
}

func (s *stubResultStore) Create(ctx context.Context, tx *gorm.DB, results []*types.SimulationResult) ([]*types.SimulationResult, error) {
	return results, nil
}

func (s *stubResultStore) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SimulationResult, error) {
	if s.result != nil && s.result.ID == id {
		return s.result, nil
	}
	return nil, nil
}

func (s *stubResultStore) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID, limit, offset int) ([]*types.SimulationResult, int64, error) {
	return nil, 0, nil
}

func (s *stubResultStore) ListByRunAll(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.SimulationResult, error) {
	return nil, nil
}

func (s *stubResultStore) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}

func (s *stubResultStore) DeleteByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error {
	return nil
}

func TestRequireResultScopesToRun(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	projectID := uuid.New()
	run := &types.Run{ID: uuid.New(), ProjectID: projectID}
	owned := &types.SimulationResult{ID: uuid.New(), RunID: run.ID, SimulatedResponse: "answer"}
	foreign := &types.SimulationResult{ID: uuid.New(), RunID: uuid.New()}

	svc := &competitorService{
		log:        log.With("service", "CompetitorService"),
		runRepo:    &stubRunStore{run: run},
		resultRepo: &stubResultStore{result: owned},
	}

	got, err := svc.requireResult(context.Background(), projectID, run.ID, owned.ID)
	if err != nil {
		t.Fatalf("owned result: %v", err)
	}
	if got.ID != owned.ID {
		t.Fatalf("got result %s, want %s", got.ID, owned.ID)
	}

	// A result id belonging to another run is invisible through this run.
	svc.resultRepo = &stubResultStore{result: foreign}
	if _, err := svc.requireResult(context.Background(), projectID, run.ID, foreign.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for foreign result, got %v", err)
	}

	// Unknown run id fails before the result is looked at.
	if _, err := svc.requireResult(context.Background(), projectID, uuid.New(), owned.ID); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found for unknown run, got %v", err)
	}
}
