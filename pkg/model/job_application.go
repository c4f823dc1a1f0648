package model

import (
	"time"
)

type JobApplication struct {
	ID              int64 `gorm:"primaryKey"`
	UserID          int64
	CompanyName     string
	Position        string
	Location        string
	AppliedDate     *Date
	LastContactedAt *time.Time
	CurrentStatus   PipelineStatus
	ContactName     string
	ContactEmail    string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Audits []ApplicationStatusAudit `gorm:"foreignKey:ApplicationID"`
}

func (a JobApplication) TableName() string {
	return "job_applications"
}

// ApplicationStatusAudit records one transition of an application's
// status. Rows are append-only and go away with their application.
type ApplicationStatusAudit struct {
	ID             int64 `gorm:"primaryKey"`
	ApplicationID  int64
	PreviousStatus PipelineStatus
	NewStatus      PipelineStatus
	ChangedAt      time.Time
	ChangedBy      *int64
}

func (a ApplicationStatusAudit) TableName() string {
	return "application_status_audits"
}
