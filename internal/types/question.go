package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Intent is one stage of the six-stage user journey funnel. Stages 1-3 carry
// no brand focus; stages 4-6 frame the brand against competitors.
type Intent string

const (
	IntentAware     Intent = "AWARE"
	IntentRecommend Intent = "RECOMMEND"
	IntentChoose    Intent = "CHOOSE"
	IntentTrust     Intent = "TRUST"
	IntentCompete   Intent = "COMPETE"
	IntentContact   Intent = "CONTACT"
)

// IntentStages lists the funnel in order.
var IntentStages = []Intent{
	IntentAware, IntentRecommend, IntentChoose,
	IntentTrust, IntentCompete, IntentContact,
}

func (i Intent) Valid() bool {
	for _, s := range IntentStages {
		if s == i {
			return true
		}
	}
	return false
}

type QuestionSource string

const (
	QuestionSourceManual    QuestionSource = "Manual"
	QuestionSourceGenerated QuestionSource = "Generated"
	QuestionSourceImported  QuestionSource = "Imported"
)

type Question struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BenchmarkID uuid.UUID      `gorm:"type:uuid;not null;index" json:"benchmark_id"`
	Benchmark   *Benchmark     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BenchmarkID;references:ID" json:"benchmark,omitempty"`
	Text        string         `gorm:"column:text;not null" json:"text"`
	Intent      Intent         `gorm:"column:intent;not null;index" json:"intent"`
	PersonaRole string         `gorm:"column:persona_role" json:"persona_role"`
	PersonaName string         `gorm:"column:persona_name" json:"persona_name"`
	Keyword     string         `gorm:"column:keyword" json:"keyword"`
	Source      QuestionSource `gorm:"column:source;not null;default:Manual" json:"source"`
	IsRelevant  bool           `gorm:"column:is_relevant;not null;default:true" json:"is_relevant"`
	IsApproved  bool           `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string { return "question" }
