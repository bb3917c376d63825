package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in_progress"
	BugStatusResolved   BugStatus = "resolved"
	BugStatusClosed     BugStatus = "closed"
	BugStatusDuplicate  BugStatus = "duplicate"
)

func (s BugStatus) Valid() bool {
	switch s {
	case BugStatusOpen, BugStatusInProgress, BugStatusResolved, BugStatusClosed, BugStatusDuplicate:
		return true
	}
	return false
}

type BugPriority string

const (
	BugPriorityLow      BugPriority = "low"
	BugPriorityNormal   BugPriority = "normal"
	BugPriorityHigh     BugPriority = "high"
	BugPriorityCritical BugPriority = "critical"
)

func (p BugPriority) Valid() bool {
	switch p {
	case BugPriorityLow, BugPriorityNormal, BugPriorityHigh, BugPriorityCritical:
		return true
	}
	return false
}

// BugReport is one user-submitted bug from the desktop app. Screenshots are
// external URLs; the binary uploads live outside this service.
type BugReport struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Description      string         `gorm:"column:description;not null" json:"description"`
	StepsToReproduce string         `gorm:"column:steps_to_reproduce" json:"steps_to_reproduce,omitempty"`
	Screenshots      StringList     `gorm:"column:screenshots;type:jsonb" json:"screenshots"`
	AppVersion       string         `gorm:"column:app_version" json:"app_version,omitempty"`
	Platform         string         `gorm:"column:platform" json:"platform,omitempty"`
	OSVersion        string         `gorm:"column:os_version" json:"os_version,omitempty"`
	UserAgent        string         `gorm:"column:user_agent" json:"user_agent,omitempty"`
	ContactEmail     string         `gorm:"column:contact_email" json:"contact_email,omitempty"`
	Status           BugStatus      `gorm:"column:status;not null;default:open;index" json:"status"`
	Priority         BugPriority    `gorm:"column:priority;not null;default:normal;index" json:"priority"`
	IPAddress        string         `gorm:"column:ip_address" json:"ip_address,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (BugReport) TableName() string { return "bug_report" }
