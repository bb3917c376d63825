package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Release is one published desktop-app version with multi-language notes and
// per-platform build artifacts. Notes and Detail map locale -> text
// ({"en": "...", "zh": "..."}).
type Release struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Version       string            `gorm:"column:version;uniqueIndex;not null" json:"version"`
	PubDate       time.Time         `gorm:"column:pub_date;not null;default:now()" json:"pub_date"`
	Notes         datatypes.JSONMap `gorm:"column:notes;type:jsonb" json:"notes"`
	Detail        datatypes.JSONMap `gorm:"column:detail;type:jsonb" json:"detail"`
	IsActive      bool              `gorm:"column:is_active;not null;default:true" json:"is_active"`
	IsCritical    bool              `gorm:"column:is_critical;not null;default:false" json:"is_critical"`
	IsPrerelease  bool              `gorm:"column:is_prerelease;not null;default:false" json:"is_prerelease"`
	MinVersion    string            `gorm:"column:min_version" json:"min_version,omitempty"`
	DownloadCount int               `gorm:"column:download_count;not null;default:0" json:"download_count"`
	Builds        []ReleaseBuild    `gorm:"foreignKey:ReleaseID;references:ID" json:"builds,omitempty"`
	CreatedAt     time.Time         `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"deleted_at,omitempty"`
}

func (Release) TableName() string { return "release" }

// NotesFor returns the short notes for a locale, falling back to English and
// then to any available language.
func (r *Release) NotesFor(locale string) string {
	return localized(r.Notes, locale)
}

// DetailFor returns the detailed changelog for a locale with the same
// fallback order as NotesFor.
func (r *Release) DetailFor(locale string) string {
	return localized(r.Detail, locale)
}

func localized(m datatypes.JSONMap, locale string) string {
	if len(m) == 0 {
		return ""
	}
	if v, ok := m[locale].(string); ok && v != "" {
		return v
	}
	if v, ok := m["en"].(string); ok && v != "" {
		return v
	}
	for _, v := range m {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// ReleaseBuild is one platform/architecture artifact of a release. The binary
// itself lives in external object storage; only the URL and its updater
// signature are recorded here.
type ReleaseBuild struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReleaseID uuid.UUID      `gorm:"type:uuid;not null;index" json:"release_id"`
	Target    string         `gorm:"column:target;not null" json:"target"`
	Arch      string         `gorm:"column:arch;not null" json:"arch"`
	URL       string         `gorm:"column:url;not null" json:"url"`
	Signature string         `gorm:"column:signature" json:"signature"`
	SizeBytes int64          `gorm:"column:size_bytes" json:"size_bytes"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ReleaseBuild) TableName() string { return "release_build" }
