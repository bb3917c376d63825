package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/sse"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type fireTaskStore struct {
	task    *types.ScheduledTask
	updates map[string]interface{}
}

func (s *fireTaskStore) Create(ctx context.Context, tx *gorm.DB, task *types.ScheduledTask) (*types.ScheduledTask, error) {
	return task, nil
}

func (s *fireTaskStore) GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.ScheduledTask, error) {
	if s.task != nil && s.task.ID == id {
		return s.task, nil
	}
	return nil, nil
}

func (s *fireTaskStore) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ScheduledTask, int64, error) {
	return nil, 0, nil
}

func (s *fireTaskStore) ListDue(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.ScheduledTask, error) {
	return nil, nil
}

func (s *fireTaskStore) Update(ctx context.Context, tx *gorm.DB, task *types.ScheduledTask) error {
	return nil
}

func (s *fireTaskStore) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	s.updates = updates
	return nil
}

func (s *fireTaskStore) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}

type stubRunStarter struct {
	run *types.Run
	err error
}

func (s *stubRunStarter) Start(ctx context.Context, projectID uuid.UUID, in StartRunInput) (*types.Run, error) {
	return s.run, s.err
}

func (s *stubRunStarter) Get(ctx context.Context, projectID, id uuid.UUID) (*types.Run, error) {
	return nil, nil
}

func (s *stubRunStarter) List(ctx context.Context, projectID, benchmarkID uuid.UUID) ([]*types.Run, int64, error) {
	return nil, 0, nil
}

func (s *stubRunStarter) Results(ctx context.Context, projectID, runID uuid.UUID, limit, offset int) ([]*types.SimulationResult, int64, error) {
	return nil, 0, nil
}

func (s *stubRunStarter) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	return nil
}

func newFireFixture(t *testing.T, starter *stubRunStarter) (*scheduleService, *fireTaskStore, *types.ScheduledTask) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	now := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	due := now.Add(-time.Minute)
	task := &types.ScheduledTask{
		ID:          uuid.New(),
		ProjectID:   uuid.New(),
		BenchmarkID: uuid.New(),
		Name:        "daily sweep",
		Engines:     types.StringList{"chatgpt"},
		Frequency:   types.FrequencyDaily,
		Time:        "09:00",
		Enabled:     true,
		NextRunAt:   &due,
	}
	store := &fireTaskStore{task: task}
	svc := &scheduleService{
		log:        log.With("service", "ScheduleService"),
		taskRepo:   store,
		runService: starter,
		hub:        sse.NewHub(log),
		now:        func() time.Time { return now },
	}
	return svc, store, task
}

func TestFireCountsOnlySuccessfulRuns(t *testing.T) {
	run := &types.Run{ID: uuid.New()}
	svc, store, task := newFireFixture(t, &stubRunStarter{run: run})

	if err := svc.Fire(context.Background(), task.ID); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if store.updates == nil {
		t.Fatal("expected task advance")
	}
	if _, ok := store.updates["run_count"]; !ok {
		t.Fatal("successful fire must increment run_count")
	}
	if store.updates["last_run_status"] != string(types.RunStatusCompleted) {
		t.Fatalf("last_run_status = %v, want completed", store.updates["last_run_status"])
	}
	if store.updates["last_run_id"] != run.ID {
		t.Fatalf("last_run_id = %v, want %s", store.updates["last_run_id"], run.ID)
	}
}

func TestFireSkippedRunLeavesRunCount(t *testing.T) {
	svc, store, task := newFireFixture(t, &stubRunStarter{err: apperr.InvalidState("benchmark is running")})

	if err := svc.Fire(context.Background(), task.ID); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if store.updates == nil {
		t.Fatal("expected task advance even on skip")
	}
	if _, ok := store.updates["run_count"]; ok {
		t.Fatal("skipped fire must not increment run_count")
	}
	if store.updates["last_run_status"] != string(types.RunStatusFailed) {
		t.Fatalf("last_run_status = %v, want failed", store.updates["last_run_status"])
	}
	next, ok := store.updates["next_run_at"].(time.Time)
	if !ok || !next.After(*task.NextRunAt) {
		t.Fatalf("next_run_at = %v, want advanced past %v", store.updates["next_run_at"], task.NextRunAt)
	}
}

func TestFireNotDueIsNoop(t *testing.T) {
	svc, store, task := newFireFixture(t, &stubRunStarter{run: &types.Run{ID: uuid.New()}})
	future := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
	task.NextRunAt = &future

	if err := svc.Fire(context.Background(), task.ID); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if store.updates != nil {
		t.Fatalf("future task must not be touched, got updates %v", store.updates)
	}
}
