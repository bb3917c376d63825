package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type SimulationResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, results []*types.SimulationResult) ([]*types.SimulationResult, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SimulationResult, error)
	ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID, limit, offset int) ([]*types.SimulationResult, int64, error)
	ListByRunAll(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.SimulationResult, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	DeleteByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error
}

type simulationResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSimulationResultRepo(db *gorm.DB, baseLog *logger.Logger) SimulationResultRepo {
	return &simulationResultRepo{
		db:  db,
		log: baseLog.With("repo", "SimulationResultRepo"),
	}
}

func (r *simulationResultRepo) Create(ctx context.Context, tx *gorm.DB, results []*types.SimulationResult) ([]*types.SimulationResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(results) == 0 {
		return []*types.SimulationResult{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *simulationResultRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.SimulationResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.SimulationResult
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *simulationResultRepo) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID, limit, offset int) ([]*types.SimulationResult, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SimulationResult
	var total int64
	q := transaction.WithContext(ctx).Model(&types.SimulationResult{}).Where("run_id = ?", runID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *simulationResultRepo) ListByRunAll(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*types.SimulationResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SimulationResult
	if err := transaction.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *simulationResultRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.SimulationResult{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *simulationResultRepo) DeleteByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Delete(&types.SimulationResult{}, "run_id = ?", runID).Error
}
