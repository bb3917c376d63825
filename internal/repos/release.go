package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type ReleaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, release *types.Release) (*types.Release, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Release, error)
	GetByVersion(ctx context.Context, tx *gorm.DB, version string) (*types.Release, error)
	ListActive(ctx context.Context, tx *gorm.DB, includePrerelease bool, limit int) ([]*types.Release, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Release, int64, error)
	Update(ctx context.Context, tx *gorm.DB, release *types.Release) error
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	IncrementDownloadCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type releaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReleaseRepo(db *gorm.DB, baseLog *logger.Logger) ReleaseRepo {
	return &releaseRepo{
		db:  db,
		log: baseLog.With("repo", "ReleaseRepo"),
	}
}

func (r *releaseRepo) Create(ctx context.Context, tx *gorm.DB, release *types.Release) (*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(release).Error; err != nil {
		return nil, err
	}
	return release, nil
}

func (r *releaseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var release types.Release
	err := transaction.WithContext(ctx).Preload("Builds").Where("id = ?", id).First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

func (r *releaseRepo) GetByVersion(ctx context.Context, tx *gorm.DB, version string) (*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var release types.Release
	err := transaction.WithContext(ctx).Preload("Builds").Where("version = ?", version).First(&release).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// ListActive returns publicly visible releases newest-first by publication
// date. Semver ordering across rows is resolved by the service layer.
func (r *releaseRepo) ListActive(ctx context.Context, tx *gorm.DB, includePrerelease bool, limit int) ([]*types.Release, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Release
	q := transaction.WithContext(ctx).Preload("Builds").Where("is_active = ?", true)
	if !includePrerelease {
		q = q.Where("is_prerelease = ?", false)
	}
	q = q.Order("pub_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *releaseRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Release, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Release
	var total int64
	if err := transaction.WithContext(ctx).Model(&types.Release{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := transaction.WithContext(ctx).Preload("Builds").
		Order("pub_date DESC").
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *releaseRepo) Update(ctx context.Context, tx *gorm.DB, release *types.Release) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(release).Error
}

func (r *releaseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Release{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *releaseRepo) IncrementDownloadCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Release{}).
		Where("id = ?", id).
		Update("download_count", gorm.Expr("download_count + 1")).Error
}

func (r *releaseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Delete(&types.ReleaseBuild{}, "release_id = ?", id).Error; err != nil {
		return err
	}
	return transaction.WithContext(ctx).Delete(&types.Release{}, "id = ?", id).Error
}
