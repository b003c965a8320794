package repos

import (
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/data/repos/assignments"
	"github.com/talentvine/talentvine-backend/internal/data/repos/consultants"
	"github.com/talentvine/talentvine-backend/internal/data/repos/jobs"
	"github.com/talentvine/talentvine-backend/internal/data/repos/notifications"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type JobRepo = jobs.JobRepo
type ConsultantRepo = consultants.ConsultantRepo
type AssignmentRepo = assignments.AssignmentRepo
type NotificationRepo = notifications.NotificationRepo

type JobFilters = jobs.JobFilters
type AllocationUpdate = jobs.AllocationUpdate
type AllocationStats = jobs.AllocationStats
type EligibilityCriteria = consultants.EligibilityCriteria

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return jobs.NewJobRepo(db, baseLog)
}
func NewConsultantRepo(db *gorm.DB, baseLog *logger.Logger) ConsultantRepo {
	return consultants.NewConsultantRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return assignments.NewAssignmentRepo(db, baseLog)
}
func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return notifications.NewNotificationRepo(db, baseLog)
}
