package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/allocerr"
	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/dbctx"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type AutoAssignMeta struct {
	AssignedBy     uuid.UUID
	AssignedByName string
	Reason         string
}

// SelectionService is the read side of the allocation engine: it decides
// which jobs need an owner and who is eligible to take them. AutoAssign is
// its only entry point that mutates, and it delegates to AllocationService.
type SelectionService interface {
	FindJobsForAllocation(dbc dbctx.Context, f repos.JobFilters) ([]*domain.Job, int64, error)
	GetConsultantsForAssignment(dbc dbctx.Context, c repos.EligibilityCriteria) ([]*domain.Consultant, bool, error)
	AutoAssign(ctx context.Context, jobID uuid.UUID, meta AutoAssignMeta) (*AllocationResult, error)
	GetStats(dbc dbctx.Context) (*repos.AllocationStats, error)
}

type selectionService struct {
	db          *gorm.DB
	log         *logger.Logger
	jobs        repos.JobRepo
	consultants repos.ConsultantRepo
	allocation  AllocationService
}

func NewSelectionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobRepo repos.JobRepo,
	consultantRepo repos.ConsultantRepo,
	allocation AllocationService,
) SelectionService {
	return &selectionService{
		db:          db,
		log:         baseLog.With("service", "SelectionService"),
		jobs:        jobRepo,
		consultants: consultantRepo,
		allocation:  allocation,
	}
}

func (s *selectionService) FindJobsForAllocation(dbc dbctx.Context, f repos.JobFilters) ([]*domain.Job, int64, error) {
	return s.jobs.FindForAllocation(dbc.Ctx, dbc.Tx, f)
}

func (s *selectionService) GetConsultantsForAssignment(dbc dbctx.Context, c repos.EligibilityCriteria) ([]*domain.Consultant, bool, error) {
	return s.consultants.ListEligible(dbc.Ctx, dbc.Tx, c)
}

// AutoAssign picks the least-loaded eligible consultant in the job's region
// and allocates the job to them. Eligibility is per-region: a job without a
// region has no eligible set.
func (s *selectionService) AutoAssign(ctx context.Context, jobID uuid.UUID, meta AutoAssignMeta) (*AllocationResult, error) {
	job, err := s.jobs.GetByID(ctx, nil, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, allocerr.ErrJobNotFound
		}
		return nil, err
	}
	if job.RegionID == nil {
		return nil, allocerr.ErrNoEligibleConsultant
	}

	eligible, _, err := s.consultants.ListEligible(ctx, nil, repos.EligibilityCriteria{
		RegionID: *job.RegionID,
		Limit:    1,
	})
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, allocerr.ErrNoEligibleConsultant
	}

	return s.allocation.Allocate(ctx, AllocateParams{
		JobID:          jobID,
		ConsultantID:   eligible[0].ID,
		AssignedBy:     meta.AssignedBy,
		AssignedByName: meta.AssignedByName,
		Reason:         meta.Reason,
		Source:         domain.AssignmentSourceAuto,
		Mode:           domain.AssignmentModeAuto,
		RegionID:       job.RegionID,
	})
}

func (s *selectionService) GetStats(dbc dbctx.Context) (*repos.AllocationStats, error) {
	return s.jobs.CountAllocationStats(dbc.Ctx, dbc.Tx)
}
