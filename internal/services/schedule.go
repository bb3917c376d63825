package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/sse"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type CreateTaskInput struct {
	BenchmarkID uuid.UUID `json:"benchmark_id"`
	Name        string    `json:"name"`
	Engines     []string  `json:"engines"`
	Channels    []string  `json:"channels"`
	Frequency   string    `json:"frequency"`
	DayOfWeek   *int      `json:"day_of_week,omitempty"`
	DayOfMonth  *int      `json:"day_of_month,omitempty"`
	Time        string    `json:"time"`
	Enabled     *bool     `json:"enabled,omitempty"`
}

type UpdateTaskInput struct {
	Name       *string   `json:"name,omitempty"`
	Engines    *[]string `json:"engines,omitempty"`
	Channels   *[]string `json:"channels,omitempty"`
	Frequency  *string   `json:"frequency,omitempty"`
	DayOfWeek  *int      `json:"day_of_week,omitempty"`
	DayOfMonth *int      `json:"day_of_month,omitempty"`
	Time       *string   `json:"time,omitempty"`
}

type ScheduleService interface {
	Create(ctx context.Context, projectID uuid.UUID, in CreateTaskInput) (*types.ScheduledTask, error)
	Get(ctx context.Context, projectID, id uuid.UUID) (*types.ScheduledTask, error)
	List(ctx context.Context, projectID uuid.UUID) ([]*types.ScheduledTask, int64, error)
	Update(ctx context.Context, projectID, id uuid.UUID, in UpdateTaskInput) (*types.ScheduledTask, error)
	Toggle(ctx context.Context, projectID, id uuid.UUID) (*types.ScheduledTask, error)
	Delete(ctx context.Context, projectID, id uuid.UUID) error
	Fire(ctx context.Context, taskID uuid.UUID) error
	StartScheduler(ctx context.Context)
}

type scheduleService struct {
	db            *gorm.DB
	log           *logger.Logger
	taskRepo      repos.ScheduledTaskRepo
	benchmarkRepo repos.BenchmarkRepo
	runService    RunService
	hub           *sse.Hub
	now           func() time.Time
}

func NewScheduleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	taskRepo repos.ScheduledTaskRepo,
	benchmarkRepo repos.BenchmarkRepo,
	runService RunService,
	hub *sse.Hub,
) ScheduleService {
	return &scheduleService{
		db:            db,
		log:           baseLog.With("service", "ScheduleService"),
		taskRepo:      taskRepo,
		benchmarkRepo: benchmarkRepo,
		runService:    runService,
		hub:           hub,
		now:           time.Now,
	}
}

func (s *scheduleService) Create(ctx context.Context, projectID uuid.UUID, in CreateTaskInput) (*types.ScheduledTask, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if len(in.Engines) == 0 {
		return nil, apperr.Validation("at least one engine is required")
	}
	freq := types.Frequency(in.Frequency)
	if err := validateSchedule(freq, in.DayOfWeek, in.DayOfMonth, in.Time); err != nil {
		return nil, err
	}

	benchmark, err := s.benchmarkRepo.GetByID(ctx, nil, projectID, in.BenchmarkID)
	if err != nil {
		return nil, err
	}
	if benchmark == nil {
		return nil, apperr.NotFound("benchmark", in.BenchmarkID)
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	task := &types.ScheduledTask{
		ID:          uuid.New(),
		ProjectID:   projectID,
		BenchmarkID: in.BenchmarkID,
		Name:        strings.TrimSpace(in.Name),
		Engines:     types.StringList(in.Engines),
		Channels:    types.StringList(in.Channels),
		Frequency:   freq,
		DayOfWeek:   in.DayOfWeek,
		DayOfMonth:  in.DayOfMonth,
		Time:        in.Time,
		Enabled:     enabled,
	}
	next := NextRunAt(freq, in.DayOfWeek, in.DayOfMonth, in.Time, s.now())
	task.NextRunAt = &next

	if _, err := s.taskRepo.Create(ctx, nil, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *scheduleService) Get(ctx context.Context, projectID, id uuid.UUID) (*types.ScheduledTask, error) {
	task, err := s.taskRepo.GetByID(ctx, nil, projectID, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("scheduled task", id)
	}
	return task, nil
}

func (s *scheduleService) List(ctx context.Context, projectID uuid.UUID) ([]*types.ScheduledTask, int64, error) {
	return s.taskRepo.ListByProject(ctx, nil, projectID)
}

func (s *scheduleService) Update(ctx context.Context, projectID, id uuid.UUID, in UpdateTaskInput) (*types.ScheduledTask, error) {
	task, err := s.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperr.Validation("name cannot be empty")
		}
		task.Name = strings.TrimSpace(*in.Name)
	}
	if in.Engines != nil {
		if len(*in.Engines) == 0 {
			return nil, apperr.Validation("at least one engine is required")
		}
		task.Engines = types.StringList(*in.Engines)
	}
	if in.Channels != nil {
		task.Channels = types.StringList(*in.Channels)
	}
	if in.Frequency != nil {
		task.Frequency = types.Frequency(*in.Frequency)
	}
	if in.DayOfWeek != nil {
		task.DayOfWeek = in.DayOfWeek
	}
	if in.DayOfMonth != nil {
		task.DayOfMonth = in.DayOfMonth
	}
	if in.Time != nil {
		task.Time = *in.Time
	}

	if err := validateSchedule(task.Frequency, task.DayOfWeek, task.DayOfMonth, task.Time); err != nil {
		return nil, err
	}
	next := NextRunAt(task.Frequency, task.DayOfWeek, task.DayOfMonth, task.Time, s.now())
	task.NextRunAt = &next

	if err := s.taskRepo.Update(ctx, nil, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Toggle flips enabled. Re-enabling recomputes next_run_at from now so a task
// disabled for a while does not fire for occurrences it missed.
func (s *scheduleService) Toggle(ctx context.Context, projectID, id uuid.UUID) (*types.ScheduledTask, error) {
	task, err := s.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	task.Enabled = !task.Enabled
	if task.Enabled {
		next := NextRunAt(task.Frequency, task.DayOfWeek, task.DayOfMonth, task.Time, s.now())
		task.NextRunAt = &next
	}
	if err := s.taskRepo.Update(ctx, nil, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *scheduleService) Delete(ctx context.Context, projectID, id uuid.UUID) error {
	if _, err := s.Get(ctx, projectID, id); err != nil {
		return err
	}
	// Runs already produced by this task are untouched.
	return s.taskRepo.Delete(ctx, nil, id)
}

// Fire executes one due occurrence. Guards against double-firing within the
// same window by checking next_run_at is still due; a missed occurrence is
// never backfilled, the task simply advances to the next future one.
func (s *scheduleService) Fire(ctx context.Context, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, nil, uuid.Nil, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return apperr.NotFound("scheduled task", taskID)
	}
	now := s.now()
	if !task.Enabled || task.NextRunAt == nil || task.NextRunAt.After(now) {
		return nil
	}

	next := NextRunAt(task.Frequency, task.DayOfWeek, task.DayOfMonth, task.Time, now)
	updates := map[string]interface{}{
		"last_run_at": now,
		"next_run_at": next,
	}

	run, runErr := s.runService.Start(ctx, task.ProjectID, StartRunInput{
		BenchmarkID: task.BenchmarkID,
		Engines:     task.Engines,
		Channels:    task.Channels,
	})
	if runErr != nil {
		// Benchmark not ready (or mid-run): skip and log, no retry storm.
		// A skipped occurrence does not count as a run.
		s.log.Warn("Scheduled fire skipped", "task_id", task.ID, "benchmark_id", task.BenchmarkID, "error", runErr)
		updates["last_run_status"] = string(types.RunStatusFailed)
	} else {
		updates["last_run_status"] = string(types.RunStatusCompleted)
		updates["last_run_id"] = run.ID
		updates["run_count"] = gorm.Expr("run_count + 1")
		s.hub.Broadcast(sse.Message{
			Channel: task.ProjectID.String(),
			Event:   sse.EventTaskFired,
			Data:    map[string]interface{}{"task_id": task.ID, "run_id": run.ID},
		})
	}

	if err := s.taskRepo.UpdateFields(ctx, nil, task.ID, updates); err != nil {
		return fmt.Errorf("advance task after fire: %w", err)
	}
	return nil
}

// StartScheduler polls for due tasks. The poll interval is coarse; Fire's own
// next_run_at guard keeps a slow tick or a racing second instance from
// double-firing.
func (s *scheduleService) StartScheduler(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tasks, err := s.taskRepo.ListDue(ctx, nil, s.now(), 50)
				if err != nil {
					s.log.Warn("ListDue failed", "error", err)
					continue
				}
				for _, task := range tasks {
					if err := s.Fire(ctx, task.ID); err != nil {
						s.log.Error("Scheduled fire failed", "task_id", task.ID, "error", err)
					}
				}
			}
		}
	}()
}

func validateSchedule(freq types.Frequency, dayOfWeek, dayOfMonth *int, timeStr string) error {
	if !freq.Valid() {
		return apperr.Validation("frequency %q unknown", freq)
	}
	if _, _, err := parseClock(timeStr); err != nil {
		return apperr.Validation("time %q is not HH:MM", timeStr)
	}
	switch freq {
	case types.FrequencyWeekly:
		if dayOfWeek == nil || *dayOfWeek < 0 || *dayOfWeek > 6 {
			return apperr.Validation("weekly schedule requires day_of_week in [0,6]")
		}
	case types.FrequencyMonthly:
		if dayOfMonth == nil || *dayOfMonth < 1 || *dayOfMonth > 31 {
			return apperr.Validation("monthly schedule requires day_of_month in [1,31]")
		}
	}
	return nil
}

func parseClock(timeStr string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(timeStr))
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// NextRunAt computes the soonest occurrence of the schedule pattern strictly
// after now, except that today's not-yet-passed slot counts as the next one.
func NextRunAt(freq types.Frequency, dayOfWeek, dayOfMonth *int, timeStr string, now time.Time) time.Time {
	hour, minute, err := parseClock(timeStr)
	if err != nil {
		hour, minute = 0, 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())

	switch freq {
	case types.FrequencyWeekly:
		target := time.Weekday(0)
		if dayOfWeek != nil {
			target = time.Weekday(*dayOfWeek)
		}
		candidate := today
		if candidate.Weekday() == target && candidate.After(now) {
			return candidate
		}
		daysAhead := (int(target) - int(candidate.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		return candidate.AddDate(0, 0, daysAhead)

	case types.FrequencyMonthly:
		day := 1
		if dayOfMonth != nil {
			day = *dayOfMonth
		}
		if now.Day() == day && today.After(now) {
			return today
		}
		// Walk forward month by month; months without the requested day
		// (e.g. day 31 in February) are skipped.
		for offset := 0; offset <= 12; offset++ {
			base := time.Date(now.Year(), now.Month(), 1, hour, minute, 0, 0, now.Location()).AddDate(0, offset, 0)
			candidate := time.Date(base.Year(), base.Month(), day, hour, minute, 0, 0, now.Location())
			if candidate.Day() != day {
				continue
			}
			if candidate.After(now) {
				return candidate
			}
		}
		return today.AddDate(1, 0, 0)

	default: // daily
		if today.After(now) {
			return today
		}
		return today.AddDate(0, 0, 1)
	}
}
