package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type RunProgress struct {
	Completed int `gorm:"column:completed;not null;default:0" json:"completed"`
	Failed    int `gorm:"column:failed;not null;default:0" json:"failed"`
	Total     int `gorm:"column:total;not null;default:0" json:"total"`
}

// RunSummary holds the run-level rollup, derived exactly once when the run
// completes. AvgRanking stays nil when no brand-mentioned result carried a
// ranking; it is never coerced to zero.
type RunSummary struct {
	VisibilityRate *float64 `gorm:"column:visibility_rate" json:"visibility_rate,omitempty"`
	AvgRanking     *float64 `gorm:"column:avg_ranking" json:"avg_ranking,omitempty"`
	DangerCount    *int     `gorm:"column:danger_count" json:"danger_count,omitempty"`
	TotalResults   *int     `gorm:"column:total_results" json:"total_results,omitempty"`
}

type Run struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project          *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	BenchmarkID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"benchmark_id"`
	Benchmark        *Benchmark     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BenchmarkID;references:ID" json:"benchmark,omitempty"`
	BenchmarkVersion string         `gorm:"column:benchmark_version;not null" json:"benchmark_version"`
	Engines          StringList     `gorm:"column:engines;type:jsonb" json:"engines"`
	Channels         StringList     `gorm:"column:channels;type:jsonb" json:"channels"`
	Status           RunStatus      `gorm:"column:status;not null;index;default:pending" json:"status"`
	Progress         RunProgress    `gorm:"embedded;embeddedPrefix:progress_" json:"progress"`
	Summary          RunSummary     `gorm:"embedded;embeddedPrefix:summary_" json:"summary"`
	CreatedAt        time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Run) TableName() string { return "run" }

// Done reports whether every (question, engine) pair has resolved.
func (p RunProgress) Done() bool {
	return p.Total > 0 && p.Completed+p.Failed >= p.Total
}
