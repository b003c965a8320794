package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/allocerr"
	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/dbctx"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

const (
	EventKindAssignmentCreated = "assignment_created"
	EventKindAssignmentRevoked = "assignment_revoked"
)

// AssignmentEvent describes one post-commit notification to a consultant.
// Events are produced inside the allocation transaction but dispatched only
// after it commits, and only by the attempt that commits.
type AssignmentEvent struct {
	Kind            string
	JobID           uuid.UUID
	JobTitle        string
	AssignmentID    uuid.UUID
	ConsultantID    uuid.UUID
	CounterpartName string
	Reason          string
	IsReassignment  bool
}

type AllocateParams struct {
	JobID          uuid.UUID
	ConsultantID   uuid.UUID
	AssignedBy     uuid.UUID
	AssignedByName string
	// Reason is required only for a true reassignment.
	Reason string
	Source string
	Mode   string
	// RegionID overrides the job's region when set; nil keeps the current one.
	RegionID *uuid.UUID
}

type AllocationResult struct {
	Assignment         *domain.ConsultantJobAssignment `json:"assignment"`
	Job                *domain.Job                     `json:"job"`
	PreviousConsultant *domain.Consultant              `json:"previous_consultant,omitempty"`
	TargetConsultant   *domain.Consultant              `json:"target_consultant"`
	IsReassignment     bool                            `json:"is_reassignment"`
	IsSameConsultant   bool                            `json:"is_same_consultant"`

	Events []AssignmentEvent `json:"-"`
}

// JobAssignmentView pairs a history row with its consultant summary.
type JobAssignmentView struct {
	Assignment *domain.ConsultantJobAssignment `json:"assignment"`
	Consultant *domain.Consultant              `json:"consultant,omitempty"`
}

type AllocationService interface {
	Allocate(ctx context.Context, p AllocateParams) (*AllocationResult, error)
	Unassign(ctx context.Context, jobID uuid.UUID) error
	FindConsultantsByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*JobAssignmentView, error)
}

type allocationService struct {
	db          *gorm.DB
	log         *logger.Logger
	txr         *TxRunner
	jobs        repos.JobRepo
	consultants repos.ConsultantRepo
	assignments repos.AssignmentRepo
	notifier    AssignmentNotifier
}

func NewAllocationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txr *TxRunner,
	jobRepo repos.JobRepo,
	consultantRepo repos.ConsultantRepo,
	assignmentRepo repos.AssignmentRepo,
	notifier AssignmentNotifier,
) AllocationService {
	return &allocationService{
		db:          db,
		log:         baseLog.With("service", "AllocationService"),
		txr:         txr,
		jobs:        jobRepo,
		consultants: consultantRepo,
		assignments: assignmentRepo,
		notifier:    notifier,
	}
}

func (s *allocationService) Allocate(ctx context.Context, p AllocateParams) (*AllocationResult, error) {
	var result *AllocationResult
	err := s.txr.Run(ctx, func(dbc dbctx.Context) error {
		r, err := s.allocateTx(dbc, p)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(result.Events) > 0 && s.notifier != nil {
		s.notifier.Dispatch(context.WithoutCancel(ctx), result.Events)
	}
	return result, nil
}

// allocateTx is the atomic core. It runs inside a single transaction and
// performs no external I/O; side effects leave only as Events.
func (s *allocationService) allocateTx(dbc dbctx.Context, p AllocateParams) (*AllocationResult, error) {
	job, err := s.jobs.GetByID(dbc.Ctx, dbc.Tx, p.JobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, allocerr.ErrJobNotFound
		}
		return nil, err
	}

	target, err := s.consultants.GetByID(dbc.Ctx, dbc.Tx, p.ConsultantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, allocerr.ErrConsultantNotFound
		}
		return nil, err
	}

	prevActive, err := s.assignments.GetActiveByJobID(dbc.Ctx, dbc.Tx, p.JobID)
	if err != nil {
		return nil, err
	}

	// The history table is the source of truth; the job's denormalized
	// pointer is only a fallback. When the fallback is the one that
	// answers, the two have drifted apart and that is worth flagging.
	var prevConsultantID *uuid.UUID
	if prevActive != nil {
		id := prevActive.ConsultantID
		prevConsultantID = &id
	} else if job.AssignedConsultantID != nil {
		prevConsultantID = job.AssignedConsultantID
		s.log.Warn("assignment drift detected: job references a consultant without an active assignment",
			"job_id", job.ID, "consultant_id", *job.AssignedConsultantID)
	}

	source := strings.TrimSpace(p.Source)
	if source == "" {
		source = domain.AssignmentSourceManualAdmin
	}
	mode := strings.TrimSpace(p.Mode)
	if mode == "" {
		mode = domain.AssignmentModeManual
	}
	regionID := job.RegionID
	if p.RegionID != nil {
		regionID = p.RegionID
	}
	now := time.Now().UTC()

	// Same-consultant confirmation: refresh the job's allocation metadata
	// and leave counters, history and pipeline state untouched.
	if prevActive != nil && prevActive.ConsultantID == p.ConsultantID {
		upd := repos.AllocationUpdate{
			RegionID:             regionID,
			AssignedConsultantID: &target.ID,
			AssignmentSource:     source,
			AssignmentMode:       mode,
		}
		if err := s.jobs.UpdateAllocationFields(dbc.Ctx, dbc.Tx, job.ID, upd); err != nil {
			return nil, err
		}
		job.RegionID = regionID
		job.AssignedConsultantID = &target.ID
		job.AssignmentSource = source
		job.AssignmentMode = mode
		return &AllocationResult{
			Assignment:       prevActive,
			Job:              job,
			TargetConsultant: target,
			IsSameConsultant: true,
		}, nil
	}

	isReassignment := prevConsultantID != nil && *prevConsultantID != p.ConsultantID
	if isReassignment && strings.TrimSpace(p.Reason) == "" {
		return nil, allocerr.ErrReassignmentReasonRequired
	}

	assignment := &domain.ConsultantJobAssignment{
		ID:               uuid.New(),
		JobID:            job.ID,
		ConsultantID:     target.ID,
		Status:           domain.AssignmentStatusActive,
		AssignedBy:       p.AssignedBy,
		AssignedByName:   p.AssignedByName,
		AssignmentSource: source,
		Reason:           strings.TrimSpace(p.Reason),
		AssignedAt:       now,
		PipelineStage:    domain.PipelineStageSourcing,
		PipelineProgress: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	var previousConsultant *domain.Consultant
	var events []AssignmentEvent

	if isReassignment {
		if prevActive != nil {
			// Work-in-progress continues under the new owner.
			assignment.PipelineStage = prevActive.PipelineStage
			assignment.PipelineProgress = prevActive.PipelineProgress
			assignment.PipelineNote = prevActive.PipelineNote
			assignment.PipelineUpdatedAt = prevActive.PipelineUpdatedAt
			assignment.PipelineUpdatedBy = prevActive.PipelineUpdatedBy

			if err := s.assignments.Close(dbc.Ctx, dbc.Tx, prevActive.ID, now); err != nil {
				return nil, err
			}
		}
		if err := s.consultants.AdjustCurrentJobs(dbc.Ctx, dbc.Tx, *prevConsultantID, -1); err != nil {
			return nil, err
		}
		previousConsultant, err = s.consultants.GetByID(dbc.Ctx, dbc.Tx, *prevConsultantID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if _, err := s.assignments.Create(dbc.Ctx, dbc.Tx, assignment); err != nil {
		return nil, err
	}
	if err := s.consultants.AdjustCurrentJobs(dbc.Ctx, dbc.Tx, target.ID, 1); err != nil {
		return nil, err
	}

	upd := repos.AllocationUpdate{
		RegionID:             regionID,
		AssignedConsultantID: &target.ID,
		AssignmentSource:     source,
		AssignmentMode:       mode,
	}
	if err := s.jobs.UpdateAllocationFields(dbc.Ctx, dbc.Tx, job.ID, upd); err != nil {
		return nil, err
	}
	job.RegionID = regionID
	job.AssignedConsultantID = &target.ID
	job.AssignmentSource = source
	job.AssignmentMode = mode

	// Re-read so the returned counters reflect the committed adjustments.
	target, err = s.consultants.GetByID(dbc.Ctx, dbc.Tx, target.ID)
	if err != nil {
		return nil, err
	}

	events = append(events, AssignmentEvent{
		Kind:            EventKindAssignmentCreated,
		JobID:           job.ID,
		JobTitle:        job.Title,
		AssignmentID:    assignment.ID,
		ConsultantID:    target.ID,
		CounterpartName: previousConsultant.FullName(),
		Reason:          assignment.Reason,
		IsReassignment:  isReassignment,
	})
	if isReassignment && previousConsultant != nil {
		events = append(events, AssignmentEvent{
			Kind:            EventKindAssignmentRevoked,
			JobID:           job.ID,
			JobTitle:        job.Title,
			AssignmentID:    assignment.ID,
			ConsultantID:    previousConsultant.ID,
			CounterpartName: target.FullName(),
			Reason:          assignment.Reason,
			IsReassignment:  true,
		})
	}

	return &AllocationResult{
		Assignment:         assignment,
		Job:                job,
		PreviousConsultant: previousConsultant,
		TargetConsultant:   target,
		IsReassignment:     isReassignment,
		Events:             events,
	}, nil
}

// Unassign closes every active assignment on the job, releases the owning
// consultants' counters and clears the job's allocation fields. Idempotent;
// sends no notifications.
func (s *allocationService) Unassign(ctx context.Context, jobID uuid.UUID) error {
	return s.txr.Run(ctx, func(dbc dbctx.Context) error {
		if _, err := s.jobs.GetByID(dbc.Ctx, dbc.Tx, jobID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return allocerr.ErrJobNotFound
			}
			return err
		}

		actives, err := s.assignments.ListActiveByJobID(dbc.Ctx, dbc.Tx, jobID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, a := range actives {
			if err := s.assignments.Close(dbc.Ctx, dbc.Tx, a.ID, now); err != nil {
				return err
			}
			if err := s.consultants.AdjustCurrentJobs(dbc.Ctx, dbc.Tx, a.ConsultantID, -1); err != nil {
				return err
			}
		}

		return s.jobs.ClearAllocationFields(dbc.Ctx, dbc.Tx, jobID)
	})
}

func (s *allocationService) FindConsultantsByJob(dbc dbctx.Context, jobID uuid.UUID) ([]*JobAssignmentView, error) {
	if _, err := s.jobs.GetByID(dbc.Ctx, dbc.Tx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, allocerr.ErrJobNotFound
		}
		return nil, err
	}

	history, err := s.assignments.FindByJobID(dbc.Ctx, dbc.Tx, jobID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(history))
	seen := make(map[uuid.UUID]bool, len(history))
	for _, a := range history {
		if !seen[a.ConsultantID] {
			seen[a.ConsultantID] = true
			ids = append(ids, a.ConsultantID)
		}
	}
	consultants, err := s.consultants.GetByIDs(dbc.Ctx, dbc.Tx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*domain.Consultant, len(consultants))
	for _, c := range consultants {
		byID[c.ID] = c
	}

	views := make([]*JobAssignmentView, 0, len(history))
	for _, a := range history {
		views = append(views, &JobAssignmentView{
			Assignment: a,
			Consultant: byID[a.ConsultantID],
		})
	}
	return views, nil
}
