package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
)

const maxBugScreenshots = 5

type SubmitBugReportInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	StepsToReproduce string   `json:"steps_to_reproduce,omitempty"`
	Screenshots      []string `json:"screenshots,omitempty"`
	AppVersion       string   `json:"app_version,omitempty"`
	Platform         string   `json:"platform,omitempty"`
	OSVersion        string   `json:"os_version,omitempty"`
	ContactEmail     string   `json:"contact_email,omitempty"`

	// Captured by the handler, not the client.
	UserAgent string `json:"-"`
	IPAddress string `json:"-"`
}

type ListBugReportsInput struct {
	Status   string
	Priority string
	Limit    int
	Offset   int
}

// BugReportService stores crash/defect reports submitted from the desktop
// app. Submission is unauthenticated; listing is for the review dashboard.
type BugReportService interface {
	Submit(ctx context.Context, in SubmitBugReportInput) (*types.BugReport, error)
	Get(ctx context.Context, id uuid.UUID) (*types.BugReport, error)
	List(ctx context.Context, in ListBugReportsInput) ([]*types.BugReport, int64, error)
}

type bugReportService struct {
	db      *gorm.DB
	log     *logger.Logger
	bugRepo repos.BugReportRepo
}

func NewBugReportService(db *gorm.DB, baseLog *logger.Logger, bugRepo repos.BugReportRepo) BugReportService {
	return &bugReportService{
		db:      db,
		log:     baseLog.With("service", "BugReportService"),
		bugRepo: bugRepo,
	}
}

func (s *bugReportService) Submit(ctx context.Context, in SubmitBugReportInput) (*types.BugReport, error) {
	if err := ValidateBugReport(in); err != nil {
		return nil, err
	}

	report := &types.BugReport{
		ID:               uuid.New(),
		Title:            strings.TrimSpace(in.Title),
		Description:      strings.TrimSpace(in.Description),
		StepsToReproduce: strings.TrimSpace(in.StepsToReproduce),
		Screenshots:      types.StringList(in.Screenshots),
		AppVersion:       in.AppVersion,
		Platform:         in.Platform,
		OSVersion:        in.OSVersion,
		UserAgent:        in.UserAgent,
		ContactEmail:     in.ContactEmail,
		Status:           types.BugStatusOpen,
		Priority:         types.BugPriorityNormal,
		IPAddress:        in.IPAddress,
	}
	if report.Screenshots == nil {
		report.Screenshots = types.StringList{}
	}

	if _, err := s.bugRepo.Create(ctx, nil, report); err != nil {
		return nil, err
	}
	s.log.Info("Bug report submitted", "bug_id", report.ID, "platform", report.Platform, "app_version", report.AppVersion)
	return report, nil
}

func (s *bugReportService) Get(ctx context.Context, id uuid.UUID) (*types.BugReport, error) {
	report, err := s.bugRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, apperr.NotFound("bug report", id)
	}
	return report, nil
}

func (s *bugReportService) List(ctx context.Context, in ListBugReportsInput) ([]*types.BugReport, int64, error) {
	status := types.BugStatus(in.Status)
	if in.Status != "" && !status.Valid() {
		return nil, 0, apperr.Validation("status %q unknown", in.Status)
	}
	priority := types.BugPriority(in.Priority)
	if in.Priority != "" && !priority.Valid() {
		return nil, 0, apperr.Validation("priority %q unknown", in.Priority)
	}
	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	return s.bugRepo.List(ctx, nil, status, priority, limit, in.Offset)
}

// ValidateBugReport enforces the submission rules: title at least 5
// characters, description at least 10, at most 5 screenshot URLs.
func ValidateBugReport(in SubmitBugReportInput) error {
	if len(strings.TrimSpace(in.Title)) < 5 {
		return apperr.Validation("title must be at least 5 characters")
	}
	if len(strings.TrimSpace(in.Description)) < 10 {
		return apperr.Validation("description must be at least 10 characters")
	}
	if len(in.Screenshots) > maxBugScreenshots {
		return apperr.Validation("maximum %d screenshots allowed", maxBugScreenshots)
	}
	return nil
}
