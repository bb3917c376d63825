package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/repos"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
	"github.com/GEO-SCOPE/geoscope-backend/internal/version"
)

type CreateReleaseInput struct {
	Version      string              `json:"version" binding:"required"`
	PubDate      *time.Time          `json:"pub_date"`
	Notes        map[string]any      `json:"notes"`
	Detail       map[string]any      `json:"detail"`
	IsCritical   bool                `json:"is_critical"`
	IsPrerelease bool                `json:"is_prerelease"`
	MinVersion   string              `json:"min_version"`
	Builds       []ReleaseBuildInput `json:"builds"`
}

type ReleaseBuildInput struct {
	Target    string `json:"target" binding:"required"`
	Arch      string `json:"arch" binding:"required"`
	URL       string `json:"url" binding:"required"`
	Signature string `json:"signature"`
	SizeBytes int64  `json:"size_bytes"`
}

type UpdateReleaseInput struct {
	Notes      *map[string]any `json:"notes,omitempty"`
	Detail     *map[string]any `json:"detail,omitempty"`
	IsActive   *bool           `json:"is_active,omitempty"`
	IsCritical *bool           `json:"is_critical,omitempty"`
	MinVersion *string         `json:"min_version,omitempty"`
}

// ReleaseService manages the published desktop-app release catalog that the
// update checker serves from.
type ReleaseService interface {
	Create(ctx context.Context, in CreateReleaseInput) (*types.Release, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Release, error)
	GetByVersion(ctx context.Context, v string) (*types.Release, error)
	List(ctx context.Context) ([]*types.Release, int64, error)
	Latest(ctx context.Context, includePrerelease bool) (*types.Release, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateReleaseInput) (*types.Release, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecordDownload(ctx context.Context, id uuid.UUID) error
}

type releaseService struct {
	db          *gorm.DB
	log         *logger.Logger
	releaseRepo repos.ReleaseRepo
}

func NewReleaseService(db *gorm.DB, baseLog *logger.Logger, releaseRepo repos.ReleaseRepo) ReleaseService {
	return &releaseService{
		db:          db,
		log:         baseLog.With("service", "ReleaseService"),
		releaseRepo: releaseRepo,
	}
}

func (s *releaseService) Create(ctx context.Context, in CreateReleaseInput) (*types.Release, error) {
	if !version.ValidSemver(in.Version) {
		return nil, apperr.Validation("invalid version %q", in.Version)
	}
	existing, err := s.releaseRepo.GetByVersion(ctx, nil, in.Version)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.InvalidState("release %s already exists", in.Version)
	}

	pubDate := time.Now().UTC()
	if in.PubDate != nil {
		pubDate = in.PubDate.UTC()
	}
	release := &types.Release{
		ID:           uuid.New(),
		Version:      in.Version,
		PubDate:      pubDate,
		Notes:        datatypes.JSONMap(in.Notes),
		Detail:       datatypes.JSONMap(in.Detail),
		IsActive:     true,
		IsCritical:   in.IsCritical,
		IsPrerelease: in.IsPrerelease,
		MinVersion:   in.MinVersion,
	}
	for _, b := range in.Builds {
		release.Builds = append(release.Builds, types.ReleaseBuild{
			ID:        uuid.New(),
			ReleaseID: release.ID,
			Target:    b.Target,
			Arch:      b.Arch,
			URL:       b.URL,
			Signature: b.Signature,
			SizeBytes: b.SizeBytes,
		})
	}
	if _, err := s.releaseRepo.Create(ctx, nil, release); err != nil {
		return nil, err
	}
	s.log.Info("Release published", "version", release.Version, "builds", len(release.Builds))
	return release, nil
}

func (s *releaseService) Get(ctx context.Context, id uuid.UUID) (*types.Release, error) {
	release, err := s.releaseRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, apperr.NotFound("release", id)
	}
	return release, nil
}

func (s *releaseService) GetByVersion(ctx context.Context, v string) (*types.Release, error) {
	release, err := s.releaseRepo.GetByVersion(ctx, nil, v)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, apperr.NotFound("release", v)
	}
	return release, nil
}

func (s *releaseService) List(ctx context.Context) ([]*types.Release, int64, error) {
	return s.releaseRepo.List(ctx, nil)
}

// Latest picks the highest active version by semver order, not by pub_date;
// a re-published hotfix for an old minor must not shadow the newest release.
func (s *releaseService) Latest(ctx context.Context, includePrerelease bool) (*types.Release, error) {
	releases, err := s.releaseRepo.ListActive(ctx, nil, includePrerelease, 0)
	if err != nil {
		return nil, err
	}
	var latest *types.Release
	for _, r := range releases {
		if latest == nil || version.IsNewer(latest.Version, r.Version) {
			latest = r
		}
	}
	return latest, nil
}

func (s *releaseService) Update(ctx context.Context, id uuid.UUID, in UpdateReleaseInput) (*types.Release, error) {
	release, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Notes != nil {
		updates["notes"] = datatypes.JSONMap(*in.Notes)
	}
	if in.Detail != nil {
		updates["detail"] = datatypes.JSONMap(*in.Detail)
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if in.IsCritical != nil {
		updates["is_critical"] = *in.IsCritical
	}
	if in.MinVersion != nil {
		updates["min_version"] = *in.MinVersion
	}
	if len(updates) == 0 {
		return release, nil
	}
	if err := s.releaseRepo.UpdateFields(ctx, nil, id, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *releaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.releaseRepo.Delete(ctx, nil, id)
}

func (s *releaseService) RecordDownload(ctx context.Context, id uuid.UUID) error {
	return s.releaseRepo.IncrementDownloadCount(ctx, nil, id)
}
