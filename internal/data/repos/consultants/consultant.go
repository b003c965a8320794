package consultants

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

// EligibilityCriteria selects consultants who can take a job in a region.
// Ranking is ascending by current load so the least-loaded consultant
// surfaces first.
type EligibilityCriteria struct {
	RegionID     uuid.UUID
	Role         string
	Availability string
	Industry     string
	Language     string
	Search       string
	Limit        int
	Offset       int
}

type ConsultantRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID) (*domain.Consultant, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, consultantIDs []uuid.UUID) ([]*domain.Consultant, error)
	// AdjustCurrentJobs applies delta to current_jobs atomically in SQL,
	// clamped at zero. The counter is never read-then-written in Go.
	AdjustCurrentJobs(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID, delta int) error
	ListEligible(ctx context.Context, tx *gorm.DB, c EligibilityCriteria) ([]*domain.Consultant, bool, error)
}

type consultantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConsultantRepo(db *gorm.DB, baseLog *logger.Logger) ConsultantRepo {
	return &consultantRepo{db: db, log: baseLog.With("repo", "ConsultantRepo")}
}

func (r *consultantRepo) GetByID(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID) (*domain.Consultant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var consultant domain.Consultant
	if err := transaction.WithContext(ctx).
		Where("id = ?", consultantID).
		First(&consultant).Error; err != nil {
		return nil, err
	}
	return &consultant, nil
}

func (r *consultantRepo) GetByIDs(ctx context.Context, tx *gorm.DB, consultantIDs []uuid.UUID) ([]*domain.Consultant, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*domain.Consultant
	if len(consultantIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", consultantIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *consultantRepo) AdjustCurrentJobs(ctx context.Context, tx *gorm.DB, consultantID uuid.UUID, delta int) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	// CASE instead of GREATEST keeps the clamp portable across dialects.
	return transaction.WithContext(ctx).
		Model(&domain.Consultant{}).
		Where("id = ?", consultantID).
		Updates(map[string]any{
			"current_jobs": gorm.Expr(
				"CASE WHEN current_jobs + ? < 0 THEN 0 ELSE current_jobs + ? END",
				delta, delta,
			),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *consultantRepo) ListEligible(ctx context.Context, tx *gorm.DB, c EligibilityCriteria) ([]*domain.Consultant, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Model(&domain.Consultant{}).
		Where("active = ?", true).
		Where("region_id = ?", c.RegionID)

	if role := strings.TrimSpace(c.Role); role != "" {
		q = q.Where("role = ?", role)
	}
	if availability := strings.TrimSpace(c.Availability); availability != "" {
		q = q.Where("availability = ?", availability)
	}
	if industry := strings.TrimSpace(c.Industry); industry != "" {
		q = q.Where("industries LIKE ?", "%"+industry+"%")
	}
	if language := strings.TrimSpace(c.Language); language != "" {
		q = q.Where("languages LIKE ?", "%"+language+"%")
	}
	if search := strings.TrimSpace(c.Search); search != "" {
		like := "%" + search + "%"
		q = q.Where("first_name LIKE ? OR last_name LIKE ?", like, like)
	}

	limit := c.Limit
	if limit <= 0 {
		limit = 20
	}

	// Fetch one extra row to derive hasMore without a second count query.
	var results []*domain.Consultant
	if err := q.Order("current_jobs ASC").
		Order("created_at ASC").
		Order("id").
		Limit(limit + 1).
		Offset(c.Offset).
		Find(&results).Error; err != nil {
		return nil, false, err
	}

	hasMore := len(results) > limit
	if hasMore {
		results = results[:limit]
	}
	return results, hasMore, nil
}
