package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChangeType string

const (
	ChangeTypeInitial          ChangeType = "initial"
	ChangeTypeQuestionAdded    ChangeType = "question_added"
	ChangeTypeQuestionModified ChangeType = "question_modified"
	ChangeTypeQuestionDeleted  ChangeType = "question_deleted"
	ChangeTypeBenchmarkUpdated ChangeType = "benchmark_updated"
	ChangeTypeRestored         ChangeType = "restored"
)

// SnapshotQuestion is the by-value copy of a question frozen into a version
// snapshot. It deliberately has no back-references: snapshots are write-once.
type SnapshotQuestion struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Intent      Intent    `json:"intent"`
	PersonaRole string    `json:"persona_role"`
	PersonaName string    `json:"persona_name"`
	Keyword     string    `json:"keyword"`
	Source      string    `json:"source"`
	IsRelevant  bool      `json:"is_relevant"`
	IsApproved  bool      `json:"is_approved"`
}

// SnapshotBenchmark is the benchmark metadata frozen into a version snapshot.
type SnapshotBenchmark struct {
	Name              string   `json:"name"`
	Scenario          string   `json:"scenario"`
	TargetRoles       []string `json:"target_roles"`
	QuestionsPerStage int      `json:"questions_per_stage"`
}

type VersionSnapshot struct {
	Benchmark SnapshotBenchmark  `json:"benchmark"`
	Questions []SnapshotQuestion `json:"questions"`
}

type BenchmarkVersion struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BenchmarkID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"benchmark_id"`
	Benchmark     *Benchmark     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BenchmarkID;references:ID" json:"benchmark,omitempty"`
	Version       string         `gorm:"column:version;not null" json:"version"`
	ChangeType    ChangeType     `gorm:"column:change_type;not null" json:"change_type"`
	ChangeSummary string         `gorm:"column:change_summary" json:"change_summary"`
	RunCount      int            `gorm:"column:run_count;not null;default:0" json:"run_count"`
	IsCurrent     bool           `gorm:"column:is_current;not null;default:false;index" json:"is_current"`
	Snapshot      datatypes.JSON `gorm:"column:snapshot;type:jsonb" json:"snapshot"`
	CreatedAt     time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (BenchmarkVersion) TableName() string { return "benchmark_version" }
