package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusOpen   = "open"
	JobStatusOnHold = "on_hold"
	JobStatusClosed = "closed"
)

// Assignment sources form an open set: imported records may carry values
// outside this list and must survive round-trips unchanged.
const (
	AssignmentSourceManualAdmin = "manual_admin"
	AssignmentSourceAuto        = "auto"
	AssignmentSourceImported    = "imported"
)

const (
	AssignmentModeManual = "manual"
	AssignmentModeAuto   = "auto"
)

// Job carries the allocation-relevant slice of a job opening. Title, code
// and company name are owned by the wider job module; the allocation engine
// only reads them for search and notifications.
//
// AssignedConsultantID is a derived cache of the ACTIVE assignment row; the
// assignment history table is the source of truth.
type Job struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title                string     `gorm:"column:title;not null" json:"title"`
	Code                 string     `gorm:"column:code;index" json:"code"`
	CompanyName          string     `gorm:"column:company_name;index" json:"company_name"`
	Status               string     `gorm:"column:status;not null;index" json:"status"`
	RegionID             *uuid.UUID `gorm:"type:uuid;column:region_id;index" json:"region_id,omitempty"`
	AssignedConsultantID *uuid.UUID `gorm:"type:uuid;column:assigned_consultant_id;index" json:"assigned_consultant_id,omitempty"`
	AssignmentSource     string     `gorm:"column:assignment_source" json:"assignment_source,omitempty"`
	AssignmentMode       string     `gorm:"column:assignment_mode" json:"assignment_mode,omitempty"`
	CreatedAt            time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"not null" json:"updated_at"`
}

func (Job) TableName() string { return "job" }
