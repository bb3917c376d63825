package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

type ScheduledTask struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project       *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	BenchmarkID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"benchmark_id"`
	Benchmark     *Benchmark     `gorm:"constraint:OnDelete:CASCADE;foreignKey:BenchmarkID;references:ID" json:"benchmark,omitempty"`
	Name          string         `gorm:"column:name;not null" json:"name"`
	Engines       StringList     `gorm:"column:engines;type:jsonb" json:"engines"`
	Channels      StringList     `gorm:"column:channels;type:jsonb" json:"channels"`
	Frequency     Frequency      `gorm:"column:frequency;not null" json:"frequency"`
	DayOfWeek     *int           `gorm:"column:day_of_week" json:"day_of_week,omitempty"`
	DayOfMonth    *int           `gorm:"column:day_of_month" json:"day_of_month,omitempty"`
	Time          string         `gorm:"column:time;not null" json:"time"`
	Enabled       bool           `gorm:"column:enabled;not null;default:true" json:"enabled"`
	LastRunAt     *time.Time     `gorm:"column:last_run_at" json:"last_run_at,omitempty"`
	NextRunAt     *time.Time     `gorm:"column:next_run_at;index" json:"next_run_at,omitempty"`
	LastRunID     *uuid.UUID     `gorm:"column:last_run_id;type:uuid" json:"last_run_id,omitempty"`
	LastRunStatus string         `gorm:"column:last_run_status" json:"last_run_status"`
	RunCount      int            `gorm:"column:run_count;not null;default:0" json:"run_count"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ScheduledTask) TableName() string { return "scheduled_task" }
