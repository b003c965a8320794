package jobs

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

// AssignmentStatusFacet filters job listings by whether an allocation
// currently exists.
const (
	FacetAll        = "all"
	FacetAssigned   = "assigned"
	FacetUnassigned = "unassigned"
)

// JobFilters narrows FindForAllocation. Zero values mean "no filter".
type JobFilters struct {
	RegionIDs        []uuid.UUID
	CompanyName      string
	ConsultantID     *uuid.UUID
	Search           string
	AssignmentStatus string
	Limit            int
	Offset           int
}

// AllocationUpdate is the full set of job fields the allocation engine owns.
// Pointers distinguish "set to null" from a value; the two strings are
// always written.
type AllocationUpdate struct {
	RegionID             *uuid.UUID
	AssignedConsultantID *uuid.UUID
	AssignmentSource     string
	AssignmentMode       string
}

type AllocationStats struct {
	Total      int64 `json:"total"`
	Assigned   int64 `json:"assigned"`
	Unassigned int64 `json:"unassigned"`
}

type JobRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Job, error)
	UpdateAllocationFields(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, upd AllocationUpdate) error
	ClearAllocationFields(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) error
	FindForAllocation(ctx context.Context, tx *gorm.DB, f JobFilters) ([]*domain.Job, int64, error)
	CountAllocationStats(ctx context.Context, tx *gorm.DB) (*AllocationStats, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: baseLog.With("repo", "JobRepo")}
}

func (r *jobRepo) GetByID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.Job, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var job domain.Job
	if err := transaction.WithContext(ctx).
		Where("id = ?", jobID).
		First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) UpdateAllocationFields(ctx context.Context, tx *gorm.DB, jobID uuid.UUID, upd AllocationUpdate) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"region_id":              upd.RegionID,
			"assigned_consultant_id": upd.AssignedConsultantID,
			"assignment_source":      upd.AssignmentSource,
			"assignment_mode":        upd.AssignmentMode,
			"updated_at":             time.Now().UTC(),
		}).Error
}

func (r *jobRepo) ClearAllocationFields(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"region_id":              nil,
			"assigned_consultant_id": nil,
			"assignment_source":      "",
			"assignment_mode":        "",
			"updated_at":             time.Now().UTC(),
		}).Error
}

func (r *jobRepo) FindForAllocation(ctx context.Context, tx *gorm.DB, f JobFilters) ([]*domain.Job, int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&domain.Job{}).
		Where("status IN ?", []string{domain.JobStatusOpen, domain.JobStatusOnHold})

	if len(f.RegionIDs) > 0 {
		q = q.Where("region_id IN ?", f.RegionIDs)
	}
	if company := strings.TrimSpace(f.CompanyName); company != "" {
		q = q.Where("company_name LIKE ?", "%"+company+"%")
	}
	if f.ConsultantID != nil {
		q = q.Where("assigned_consultant_id = ?", *f.ConsultantID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("title LIKE ? OR code LIKE ? OR company_name LIKE ?", like, like, like)
	}
	switch f.AssignmentStatus {
	case FacetAssigned:
		q = q.Where("assigned_consultant_id IS NOT NULL")
	case FacetUnassigned:
		q = q.Where("assigned_consultant_id IS NULL")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	var results []*domain.Job
	if err := q.Order("created_at DESC").Order("id").
		Limit(limit).
		Offset(f.Offset).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *jobRepo) CountAllocationStats(ctx context.Context, tx *gorm.DB) (*AllocationStats, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	base := func() *gorm.DB {
		return transaction.WithContext(ctx).
			Model(&domain.Job{}).
			Where("status IN ?", []string{domain.JobStatusOpen, domain.JobStatusOnHold})
	}

	var stats AllocationStats
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("assigned_consultant_id IS NOT NULL").Count(&stats.Assigned).Error; err != nil {
		return nil, err
	}
	stats.Unassigned = stats.Total - stats.Assigned
	return &stats, nil
}
