package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BenchmarkStatus string

const (
	BenchmarkStatusDraft      BenchmarkStatus = "draft"
	BenchmarkStatusGenerating BenchmarkStatus = "generating"
	BenchmarkStatusReady      BenchmarkStatus = "ready"
	BenchmarkStatusRunning    BenchmarkStatus = "running"
	BenchmarkStatusArchived   BenchmarkStatus = "archived"
)

// benchmarkTransitions is the closed transition table:
// draft -> generating -> ready <-> running, with ready/draft archivable.
var benchmarkTransitions = map[BenchmarkStatus][]BenchmarkStatus{
	BenchmarkStatusDraft:      {BenchmarkStatusGenerating, BenchmarkStatusReady, BenchmarkStatusArchived},
	BenchmarkStatusGenerating: {BenchmarkStatusReady, BenchmarkStatusDraft},
	BenchmarkStatusReady:      {BenchmarkStatusRunning, BenchmarkStatusArchived},
	BenchmarkStatusRunning:    {BenchmarkStatusReady},
	BenchmarkStatusArchived:   {},
}

func (s BenchmarkStatus) CanTransitionTo(next BenchmarkStatus) bool {
	for _, allowed := range benchmarkTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BenchmarkStatus) Valid() bool {
	switch s {
	case BenchmarkStatusDraft, BenchmarkStatusGenerating, BenchmarkStatusReady,
		BenchmarkStatusRunning, BenchmarkStatusArchived:
		return true
	}
	return false
}

type Benchmark struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	Project           *Project        `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Name              string          `gorm:"column:name;not null" json:"name"`
	Scenario          string          `gorm:"column:scenario" json:"scenario"`
	TargetRoles       StringList      `gorm:"column:target_roles;type:jsonb" json:"target_roles"`
	QuestionsPerStage int             `gorm:"column:questions_per_stage;not null;default:3" json:"questions_per_stage"`
	TotalQuestions    int             `gorm:"column:total_questions;not null;default:0" json:"total_questions"`
	Status            BenchmarkStatus `gorm:"column:status;not null;index;default:draft" json:"status"`
	IsActive          bool            `gorm:"column:is_active;not null;default:false" json:"is_active"`
	CurrentVersion    string          `gorm:"column:current_version;not null;default:'1.0'" json:"current_version"`
	CreatedAt         time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

func (Benchmark) TableName() string { return "benchmark" }
