package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	AssignmentStatusActive   = "ACTIVE"
	AssignmentStatusInactive = "INACTIVE"
)

const (
	PipelineStageSourcing  = "SOURCING"
	PipelineStageScreening = "SCREENING"
	PipelineStageInterview = "INTERVIEW"
	PipelineStageOffer     = "OFFER"
	PipelineStageClosed    = "CLOSED"
)

// ConsultantJobAssignment is the append-only assignment ledger. A row is
// created once per allocation event and transitions ACTIVE -> INACTIVE
// exactly once; rows are never deleted. At most one row per job may be
// ACTIVE at any time.
//
// The pipeline sub-state tracks work-in-progress on the job independently
// of who owns it, and is carried forward across a reassignment rather than
// reset.
type ConsultantJobAssignment struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobID            uuid.UUID  `gorm:"type:uuid;not null;index:idx_assignment_job_status" json:"job_id"`
	ConsultantID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"consultant_id"`
	Status           string     `gorm:"column:status;not null;index:idx_assignment_job_status" json:"status"`
	AssignedBy       uuid.UUID  `gorm:"type:uuid;column:assigned_by" json:"assigned_by"`
	AssignedByName   string     `gorm:"column:assigned_by_name" json:"assigned_by_name"`
	AssignmentSource string     `gorm:"column:assignment_source" json:"assignment_source"`
	Reason           string     `gorm:"column:reason" json:"reason,omitempty"`
	AssignedAt       time.Time  `gorm:"column:assigned_at;not null;index" json:"assigned_at"`
	ClosedAt         *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`

	PipelineStage     string     `gorm:"column:pipeline_stage;not null" json:"pipeline_stage"`
	PipelineProgress  int        `gorm:"column:pipeline_progress;not null;default:0" json:"pipeline_progress"`
	PipelineNote      string     `gorm:"column:pipeline_note" json:"pipeline_note,omitempty"`
	PipelineUpdatedAt *time.Time `gorm:"column:pipeline_updated_at" json:"pipeline_updated_at,omitempty"`
	PipelineUpdatedBy *uuid.UUID `gorm:"type:uuid;column:pipeline_updated_by" json:"pipeline_updated_by,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ConsultantJobAssignment) TableName() string { return "consultant_job_assignment" }
