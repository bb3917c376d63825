package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type BenchmarkRepo interface {
	Create(ctx context.Context, tx *gorm.DB, benchmark *types.Benchmark) (*types.Benchmark, error)
	GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.Benchmark, error)
	ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Benchmark, int64, error)
	Update(ctx context.Context, tx *gorm.DB, benchmark *types.Benchmark) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeactivateOthers(ctx context.Context, tx *gorm.DB, projectID, keepID uuid.UUID) error
}

type benchmarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBenchmarkRepo(db *gorm.DB, baseLog *logger.Logger) BenchmarkRepo {
	return &benchmarkRepo{
		db:  db,
		log: baseLog.With("repo", "BenchmarkRepo"),
	}
}

func (r *benchmarkRepo) Create(ctx context.Context, tx *gorm.DB, benchmark *types.Benchmark) (*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(benchmark).Error; err != nil {
		return nil, err
	}
	return benchmark, nil
}

func (r *benchmarkRepo) GetByID(ctx context.Context, tx *gorm.DB, projectID, id uuid.UUID) (*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var benchmark types.Benchmark
	q := transaction.WithContext(ctx).Where("id = ?", id)
	if projectID != uuid.Nil {
		q = q.Where("project_id = ?", projectID)
	}
	err := q.First(&benchmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &benchmark, nil
}

func (r *benchmarkRepo) ListByProject(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.Benchmark, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Benchmark
	var total int64
	q := transaction.WithContext(ctx).Model(&types.Benchmark{}).Where("project_id = ?", projectID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *benchmarkRepo) Update(ctx context.Context, tx *gorm.DB, benchmark *types.Benchmark) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(benchmark).Error
}

func (r *benchmarkRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Benchmark{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *benchmarkRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Delete(&types.Benchmark{}, "id = ?", id).Error
}

func (r *benchmarkRepo) DeactivateOthers(ctx context.Context, tx *gorm.DB, projectID, keepID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Benchmark{}).
		Where("project_id = ? AND id <> ?", projectID, keepID).
		Update("is_active", false).Error
}
