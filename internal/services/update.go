package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
	"github.com/GEO-SCOPE/geoscope-backend/internal/types"
	"github.com/GEO-SCOPE/geoscope-backend/internal/utils"
	"github.com/GEO-SCOPE/geoscope-backend/internal/version"
)

// UpdateCheckResponse follows the Tauri updater wire format: the fields the
// desktop client needs to download and verify a newer build, nothing else.
type UpdateCheckResponse struct {
	Version   string `json:"version"`
	PubDate   string `json:"pub_date"`
	URL       string `json:"url"`
	Signature string `json:"signature"`
	Notes     string `json:"notes"`
}

type LatestVersionInfo struct {
	Version      string         `json:"version"`
	PubDate      string         `json:"pub_date"`
	Notes        map[string]any `json:"notes"`
	Detail       map[string]any `json:"detail"`
	IsCritical   bool           `json:"is_critical"`
	IsPrerelease bool           `json:"is_prerelease"`
	Channel      string         `json:"channel,omitempty"`
	Platforms    []Platform     `json:"platforms"`
}

type Platform struct {
	Target string `json:"target"`
	Arch   string `json:"arch"`
}

type ChangelogEntry struct {
	Version string         `json:"version"`
	PubDate string         `json:"pub_date"`
	Notes   map[string]any `json:"notes"`
	Detail  map[string]any `json:"detail"`
}

type Changelog struct {
	Total    int              `json:"total"`
	Releases []ChangelogEntry `json:"releases"`
}

// UpdateService answers desktop-client update checks against the release
// catalog. Responses for the hot path are cached in redis with a short TTL;
// when redis is not configured every check falls through to the database.
type UpdateService interface {
	// CheckUpdate returns nil when the client is already on the newest
	// version or no matching build exists for its platform.
	CheckUpdate(ctx context.Context, current, target, arch, locale string, includePrerelease bool) (*UpdateCheckResponse, error)
	LatestInfo(ctx context.Context, includePrerelease bool) (*LatestVersionInfo, error)
	GetChangelog(ctx context.Context, limit int, locale string) (*Changelog, error)
	ValidateBetaKey(key string) bool
}

type updateService struct {
	db       *gorm.DB
	log      *logger.Logger
	releases ReleaseService
	cache    *redis.Client
	cacheTTL time.Duration
	betaKeys map[string]bool
}

func NewUpdateService(db *gorm.DB, baseLog *logger.Logger, releases ReleaseService, cache *redis.Client) UpdateService {
	log := baseLog.With("service", "UpdateService")
	ttl := time.Duration(utils.GetEnvAsInt("UPDATE_CACHE_TTL_SECONDS", 60, log)) * time.Second

	betaKeys := map[string]bool{}
	for _, key := range strings.Split(os.Getenv("BETA_ACCESS_KEYS"), ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			betaKeys[key] = true
		}
	}

	return &updateService{
		db:       db,
		log:      log,
		releases: releases,
		cache:    cache,
		cacheTTL: ttl,
		betaKeys: betaKeys,
	}
}

func (s *updateService) CheckUpdate(ctx context.Context, current, target, arch, locale string, includePrerelease bool) (*UpdateCheckResponse, error) {
	cacheKey := fmt.Sprintf("update:check:%s:%s:%s:%s:%t", current, target, arch, locale, includePrerelease)
	if cached, ok := s.cacheGet(ctx, cacheKey); ok {
		if cached == "" {
			return nil, nil
		}
		var out UpdateCheckResponse
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	}

	latest, err := s.releases.Latest(ctx, includePrerelease)
	if err != nil {
		return nil, err
	}
	resp := buildUpdateResponse(latest, current, target, arch, locale)

	if resp == nil {
		s.cacheSet(ctx, cacheKey, "")
		return nil, nil
	}
	if raw, err := json.Marshal(resp); err == nil {
		s.cacheSet(ctx, cacheKey, string(raw))
	}
	return resp, nil
}

func (s *updateService) LatestInfo(ctx context.Context, includePrerelease bool) (*LatestVersionInfo, error) {
	latest, err := s.releases.Latest(ctx, includePrerelease)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}
	info := &LatestVersionInfo{
		Version:      latest.Version,
		PubDate:      latest.PubDate.UTC().Format(time.RFC3339),
		Notes:        latest.Notes,
		Detail:       latest.Detail,
		IsCritical:   latest.IsCritical,
		IsPrerelease: latest.IsPrerelease,
		Platforms:    make([]Platform, 0, len(latest.Builds)),
	}
	for _, b := range latest.Builds {
		info.Platforms = append(info.Platforms, Platform{Target: b.Target, Arch: b.Arch})
	}
	return info, nil
}

func (s *updateService) GetChangelog(ctx context.Context, limit int, locale string) (*Changelog, error) {
	if limit <= 0 {
		limit = 10
	}
	releases, _, err := s.releases.List(ctx)
	if err != nil {
		return nil, err
	}
	SortReleasesDesc(releases)
	if len(releases) > limit {
		releases = releases[:limit]
	}
	out := &Changelog{Total: len(releases), Releases: make([]ChangelogEntry, 0, len(releases))}
	for _, r := range releases {
		out.Releases = append(out.Releases, ChangelogEntry{
			Version: r.Version,
			PubDate: r.PubDate.UTC().Format(time.RFC3339),
			Notes:   r.Notes,
			Detail:  r.Detail,
		})
	}
	return out, nil
}

func (s *updateService) ValidateBetaKey(key string) bool {
	return key != "" && s.betaKeys[key]
}

func (s *updateService) cacheGet(ctx context.Context, key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	val, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("Update cache read failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (s *updateService) cacheSet(ctx context.Context, key, val string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, val, s.cacheTTL).Err(); err != nil {
		s.log.Warn("Update cache write failed", "key", key, "error", err)
	}
}

// buildUpdateResponse applies the update gate: the latest release must be
// strictly newer than the client and must carry a build for the client's
// platform, otherwise there is no update to offer.
func buildUpdateResponse(latest *types.Release, current, target, arch, locale string) *UpdateCheckResponse {
	if latest == nil {
		return nil
	}
	if !version.IsNewer(current, latest.Version) {
		return nil
	}
	var build *types.ReleaseBuild
	for i := range latest.Builds {
		if latest.Builds[i].Target == target && latest.Builds[i].Arch == arch {
			build = &latest.Builds[i]
			break
		}
	}
	if build == nil {
		return nil
	}
	return &UpdateCheckResponse{
		Version:   latest.Version,
		PubDate:   latest.PubDate.UTC().Format(time.RFC3339),
		URL:       build.URL,
		Signature: build.Signature,
		Notes:     latest.NotesFor(locale),
	}
}

// SortReleasesDesc orders releases newest first by semver.
func SortReleasesDesc(releases []*types.Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		return version.Compare(releases[i].Version, releases[j].Version) > 0
	})
}
