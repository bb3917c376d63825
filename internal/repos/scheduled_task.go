package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type ScheduledTaskRepo interface {
	Create(ctx context.Context, tx *gorm.DB, task *types.ScheduledTask) (*types.ScheduledTask, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.ScheduledTask, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ScheduledTask, int64, error)
	ListDue(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.ScheduledTask, error)
	Update(ctx context.Context, tx *gorm.DB, task *types.ScheduledTask) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type scheduledTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewScheduledTaskRepo(db *gorm.DB, baseLog *logger.Logger) ScheduledTaskRepo {
	return &scheduledTaskRepo{
		db:  db,
		log: baseLog.With("repo", "ScheduledTaskRepo"),
	}
}

func (r *scheduledTaskRepo) Create(ctx context.Context, tx *gorm.DB, task *types.ScheduledTask) (*types.ScheduledTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (r *scheduledTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.ScheduledTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var task types.ScheduledTask
	q := transaction.WithContext(ctx).Where("id = ?", id)
	if projectID != uuid.Nil {
		q = q.Where("project_id = ?", projectID)
	}
	err := q.First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *scheduledTaskRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.ScheduledTask, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduledTask
	var total int64
	q := transaction.WithContext(ctx).Model(&types.ScheduledTask{}).Where("project_id = ?", projectID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListDue returns enabled tasks whose next_run_at has passed. The scheduler
// re-checks next_run_at before firing, so an occasional stale row is harmless.
func (r *scheduledTaskRepo) ListDue(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*types.ScheduledTask, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ScheduledTask
	q := transaction.WithContext(ctx).
		Where("enabled = ? AND next_run_at IS NOT NULL AND next_run_at <= ?", true, now).
		Order("next_run_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduledTaskRepo) Update(ctx context.Context, tx *gorm.DB, task *types.ScheduledTask) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(task).Error
}

func (r *scheduledTaskRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.ScheduledTask{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *scheduledTaskRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Delete(&types.ScheduledTask{}, "id = ?", id).Error
}
