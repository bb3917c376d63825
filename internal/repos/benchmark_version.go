package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type BenchmarkVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, version *types.BenchmarkVersion) (*types.BenchmarkVersion, error)
	GetByID(ctx context.Context, tx *gorm.DB, benchmarkID, id uuid.UUID) (*types.BenchmarkVersion, error)
	GetCurrent(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) (*types.BenchmarkVersion, error)
	ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.BenchmarkVersion, error)
	ClearCurrent(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) error
	IncrementRunCount(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID, version string) error
	DeleteByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) error
}

type benchmarkVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBenchmarkVersionRepo(db *gorm.DB, baseLog *logger.Logger) BenchmarkVersionRepo {
	return &benchmarkVersionRepo{
		db:  db,
		log: baseLog.With("repo", "BenchmarkVersionRepo"),
	}
}

func (r *benchmarkVersionRepo) Create(ctx context.Context, tx *gorm.DB, version *types.BenchmarkVersion) (*types.BenchmarkVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(version).Error; err != nil {
		return nil, err
	}
	return version, nil
}

func (r *benchmarkVersionRepo) GetByID(ctx context.Context, tx *gorm.DB, benchmarkID, id uuid.UUID) (*types.BenchmarkVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var version types.BenchmarkVersion
	q := transaction.WithContext(ctx).Where("id = ?", id)
	if benchmarkID != uuid.Nil {
		q = q.Where("benchmark_id = ?", benchmarkID)
	}
	err := q.First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *benchmarkVersionRepo) GetCurrent(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) (*types.BenchmarkVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var version types.BenchmarkVersion
	err := transaction.WithContext(ctx).
		Where("benchmark_id = ? AND is_current = ?", benchmarkID, true).
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &version, nil
}

func (r *benchmarkVersionRepo) ListByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) ([]*types.BenchmarkVersion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.BenchmarkVersion
	if err := transaction.WithContext(ctx).
		Where("benchmark_id = ?", benchmarkID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *benchmarkVersionRepo) ClearCurrent(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BenchmarkVersion{}).
		Where("benchmark_id = ? AND is_current = ?", benchmarkID, true).
		Update("is_current", false).Error
}

func (r *benchmarkVersionRepo) IncrementRunCount(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID, version string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.BenchmarkVersion{}).
		Where("benchmark_id = ? AND version = ?", benchmarkID, version).
		Update("run_count", gorm.Expr("run_count + 1")).Error
}

func (r *benchmarkVersionRepo) DeleteByBenchmark(ctx context.Context, tx *gorm.DB, benchmarkID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Delete(&types.BenchmarkVersion{}, "benchmark_id = ?", benchmarkID).Error
}
