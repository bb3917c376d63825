package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

type BugReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, report *types.BugReport) (*types.BugReport, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BugReport, error)
	List(ctx context.Context, tx *gorm.DB, status types.BugStatus, priority types.BugPriority, limit, offset int) ([]*types.BugReport, int64, error)
}

type bugReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBugReportRepo(db *gorm.DB, baseLog *logger.Logger) BugReportRepo {
	return &bugReportRepo{
		db:  db,
		log: baseLog.With("repo", "BugReportRepo"),
	}
}

func (r *bugReportRepo) Create(ctx context.Context, tx *gorm.DB, report *types.BugReport) (*types.BugReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

func (r *bugReportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.BugReport, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var report types.BugReport
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *bugReportRepo) List(ctx context.Context, tx *gorm.DB, status types.BugStatus, priority types.BugPriority, limit, offset int) ([]*types.BugReport, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.BugReport
	var total int64
	q := transaction.WithContext(ctx).Model(&types.BugReport{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if priority != "" {
		q = q.Where("priority = ?", priority)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q = q.Order("created_at DESC")
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
