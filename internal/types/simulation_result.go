package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

type SimulationResult struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RunID                uuid.UUID      `gorm:"type:uuid;not null;index" json:"run_id"`
	Run                  *Run           `gorm:"constraint:OnDelete:CASCADE;foreignKey:RunID;references:ID" json:"run,omitempty"`
	QuestionID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"question_id"`
	Engine               string         `gorm:"column:engine;not null;index" json:"engine"`
	Channel              string         `gorm:"column:channel" json:"channel"`
	SimulatedResponse    string         `gorm:"column:simulated_response" json:"simulated_response"`
	Sentiment            Sentiment      `gorm:"column:sentiment;default:neutral" json:"sentiment"`
	BrandMentioned       bool           `gorm:"column:brand_mentioned;not null;default:false" json:"brand_mentioned"`
	CompetitorMentioned  bool           `gorm:"column:competitor_mentioned;not null;default:false" json:"competitor_mentioned"`
	CompetitorsMentioned StringList     `gorm:"column:competitors_mentioned;type:jsonb" json:"competitors_mentioned"`
	Ranking              *int           `gorm:"column:ranking" json:"ranking,omitempty"`
	Citations            StringList     `gorm:"column:citations;type:jsonb" json:"citations"`
	RiskFlags            StringList     `gorm:"column:risk_flags;type:jsonb" json:"risk_flags"`
	CTA                  *string        `gorm:"column:cta" json:"cta,omitempty"`
	VisibilityScore      int            `gorm:"column:visibility_score;not null;default:0" json:"visibility_score"`
	Failed               bool           `gorm:"column:failed;not null;default:false" json:"failed"`
	FailureReason        string         `gorm:"column:failure_reason" json:"failure_reason,omitempty"`
	CompetitorAnalysis   datatypes.JSON `gorm:"column:competitor_analysis;type:jsonb" json:"competitor_analysis,omitempty"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SimulationResult) TableName() string { return "simulation_result" }

// Dangerous reports the co-mention hazard used across aggregation and the
// dashboard: competitors show up where the brand does not.
func (r *SimulationResult) Dangerous() bool {
	return r.CompetitorMentioned && !r.BrandMentioned
}
