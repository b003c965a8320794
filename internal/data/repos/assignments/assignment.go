package assignments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

// AssignmentRepo owns the append-only assignment ledger. There is
// deliberately no delete: a row only ever moves ACTIVE -> INACTIVE.
type AssignmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assignment *domain.ConsultantJobAssignment) (*domain.ConsultantJobAssignment, error)
	// GetActiveByJobID returns (nil, nil) when the job has no active
	// assignment.
	GetActiveByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.ConsultantJobAssignment, error)
	ListActiveByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) ([]*domain.ConsultantJobAssignment, error)
	// Close marks the row INACTIVE with a terminal CLOSED pipeline stage.
	Close(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, closedAt time.Time) error
	FindByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) ([]*domain.ConsultantJobAssignment, error)
	CountActiveByConsultantID(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID) (int64, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *domain.ConsultantJobAssignment) (*domain.ConsultantJobAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *assignmentRepo) GetActiveByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) (*domain.ConsultantJobAssignment, error) {
	actives, err := r.ListActiveByJobID(ctx, tx, jobID)
	if err != nil {
		return nil, err
	}
	if len(actives) == 0 {
		return nil, nil
	}
	return actives[0], nil
}

func (r *assignmentRepo) ListActiveByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) ([]*domain.ConsultantJobAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ConsultantJobAssignment
	if err := transaction.WithContext(ctx).
		Where("job_id = ? AND status = ?", jobID, domain.AssignmentStatusActive).
		Order("assigned_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) Close(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, closedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&domain.ConsultantJobAssignment{}).
		Where("id = ?", assignmentID).
		Updates(map[string]any{
			"status":         domain.AssignmentStatusInactive,
			"pipeline_stage": domain.PipelineStageClosed,
			"closed_at":      closedAt,
			"updated_at":     closedAt,
		}).Error
}

func (r *assignmentRepo) FindByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) ([]*domain.ConsultantJobAssignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.ConsultantJobAssignment
	if err := transaction.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("assigned_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentRepo) CountActiveByConsultantID(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.ConsultantJobAssignment{}).
		Where("consultant_id = ? AND status = ?", consultantID, domain.AssignmentStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
