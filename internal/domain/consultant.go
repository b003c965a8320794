package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	AvailabilityAvailable   = "available"
	AvailabilityLimited     = "limited"
	AvailabilityUnavailable = "unavailable"
)

// Consultant is the recruiter side of an allocation. CurrentJobs must equal
// the number of ACTIVE assignment rows referencing the consultant; it is
// only ever mutated inside an allocation transaction, never read-then-written
// outside of one.
type Consultant struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string     `gorm:"column:first_name;not null" json:"first_name"`
	LastName     string     `gorm:"column:last_name;not null" json:"last_name"`
	RegionID     *uuid.UUID `gorm:"type:uuid;column:region_id;index" json:"region_id,omitempty"`
	Role         string     `gorm:"column:role;index" json:"role"`
	Availability string     `gorm:"column:availability;index" json:"availability"`
	Industries   string     `gorm:"column:industries" json:"industries"`
	Languages    string     `gorm:"column:languages" json:"languages"`
	CurrentJobs  int        `gorm:"column:current_jobs;not null;default:0;index" json:"current_jobs"`
	Active       bool       `gorm:"column:active;not null;default:true;index" json:"active"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (Consultant) TableName() string { return "consultant" }

func (c *Consultant) FullName() string {
	if c == nil {
		return ""
	}
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
