package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotificationTypeJobAssigned   = "job_assigned"
	NotificationTypeJobReassigned = "job_reassigned"
	NotificationTypeJobRevoked    = "job_revoked"
)

// Notification is the persisted in-app copy of a best-effort push. Written
// outside the allocation transaction; a failed write never affects the
// committed allocation.
type Notification struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ConsultantID uuid.UUID      `gorm:"type:uuid;not null;index" json:"consultant_id"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	Message      string         `gorm:"column:message" json:"message"`
	Type         string         `gorm:"column:type;not null;index" json:"type"`
	ActionURL    string         `gorm:"column:action_url" json:"action_url,omitempty"`
	Payload      datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`
	ReadAt       *time.Time     `gorm:"column:read_at;index" json:"read_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
