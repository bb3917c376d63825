package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type RunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.Run) (*types.Run, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.Run, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, benchmarkID uuid.UUID) ([]*types.Run, int64, error)
	ListCompletedByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Run, error)
	LatestCompletedByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Run, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// IncrementProgress applies the deltas in a single atomic UPDATE and
	// returns the run's progress afterwards.
	IncrementProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, completedDelta, failedDelta int) (types.RunProgress, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type runRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRepo(db *gorm.DB, baseLog *logger.Logger) RunRepo {
	return &runRepo{
		db:  db,
		log: baseLog.With("repo", "RunRepo"),
	}
}

func (r *runRepo) Create(ctx context.Context, tx *gorm.DB, run *types.Run) (*types.Run, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *runRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.Run, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.Run
	q := transaction.WithContext(ctx).Where("id = ?", id)
	if projectID != uuid.Nil {
		q = q.Where("project_id = ?", projectID)
	}
	err := q.First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID, benchmarkID uuid.UUID) ([]*types.Run, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Run
	var total int64
	q := transaction.WithContext(ctx).Model(&types.Run{}).Where("project_id = ?", projectID)
	if benchmarkID != uuid.Nil {
		q = q.Where("benchmark_id = ?", benchmarkID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *runRepo) ListCompletedByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Run, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Run
	if err := transaction.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, types.RunStatusCompleted).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runRepo) LatestCompletedByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.Run, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var run types.Run
	err := transaction.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, types.RunStatusCompleted).
		Order("created_at DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *runRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Run{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *runRepo) IncrementProgress(ctx context.Context, tx *gorm.DB, id uuid.UUID, completedDelta, failedDelta int) (types.RunProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(ctx).
		Model(&types.Run{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"progress_completed": gorm.Expr("progress_completed + ?", completedDelta),
			"progress_failed":    gorm.Expr("progress_failed + ?", failedDelta),
		}).Error
	if err != nil {
		return types.RunProgress{}, err
	}
	var run types.Run
	if err := transaction.WithContext(ctx).Select("progress_completed", "progress_failed", "progress_total").
		Where("id = ?", id).
		First(&run).Error; err != nil {
		return types.RunProgress{}, err
	}
	return run.Progress, nil
}

func (r *runRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Delete(&types.Run{}, "id = ?", id).Error
}
