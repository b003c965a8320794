package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []AssignmentEvent
}

func (r *recordingNotifier) Dispatch(_ context.Context, events []AssignmentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recordingNotifier) all() []AssignmentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]AssignmentEvent, len(r.events))
	copy(out, r.events)
	return out
}

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("logger: %v", err)
	}
	return log
}

type engineFixture struct {
	db          *gorm.DB
	allocation  AllocationService
	selection   SelectionService
	jobs        repos.JobRepo
	consultants repos.ConsultantRepo
	assignments repos.AssignmentRepo
	notifier    *recordingNotifier
}

func newEngine(t *testing.T) *engineFixture {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql.DB handle: %v", err)
	}
	// A single connection keeps every session on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(
		&domain.Job{},
		&domain.Consultant{},
		&domain.ConsultantJobAssignment{},
		&domain.Notification{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	log := testLogger(t)

	jobRepo := repos.NewJobRepo(gdb, log)
	consultantRepo := repos.NewConsultantRepo(gdb, log)
	assignmentRepo := repos.NewAssignmentRepo(gdb, log)
	notifier := &recordingNotifier{}

	txr := NewTxRunner(gdb, log, TxRunnerConfig{MaxConcurrent: 4, WaitBudget: time.Second, ExecBudget: 5 * time.Second})
	allocation := NewAllocationService(gdb, log, txr, jobRepo, consultantRepo, assignmentRepo, notifier)
	selection := NewSelectionService(gdb, log, jobRepo, consultantRepo, allocation)

	return &engineFixture{
		db:          gdb,
		allocation:  allocation,
		selection:   selection,
		jobs:        jobRepo,
		consultants: consultantRepo,
		assignments: assignmentRepo,
		notifier:    notifier,
	}
}

func seedJob(t *testing.T, db *gorm.DB, regionID *uuid.UUID) *domain.Job {
	t.Helper()
	now := time.Now().UTC()
	job := &domain.Job{
		ID:          uuid.New(),
		Title:       "Senior Backend Engineer",
		Code:        "JOB-" + uuid.NewString()[:8],
		CompanyName: "Acme Staffing",
		Status:      domain.JobStatusOpen,
		RegionID:    regionID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func seedConsultant(t *testing.T, db *gorm.DB, regionID *uuid.UUID, firstName string) *domain.Consultant {
	t.Helper()
	now := time.Now().UTC()
	consultant := &domain.Consultant{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     "Reed",
		RegionID:     regionID,
		Role:         "recruiter",
		Availability: domain.AvailabilityAvailable,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(consultant).Error; err != nil {
		t.Fatalf("seed consultant: %v", err)
	}
	return consultant
}

func reloadJob(t *testing.T, db *gorm.DB, id uuid.UUID) *domain.Job {
	t.Helper()
	var job domain.Job
	if err := db.Where("id = ?", id).First(&job).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	return &job
}

func reloadConsultant(t *testing.T, db *gorm.DB, id uuid.UUID) *domain.Consultant {
	t.Helper()
	var consultant domain.Consultant
	if err := db.Where("id = ?", id).First(&consultant).Error; err != nil {
		t.Fatalf("reload consultant: %v", err)
	}
	return &consultant
}

// checkInvariants asserts the engine's core guarantees: at most one ACTIVE
// assignment per job, the job's denormalized pointer in lock-step with it,
// and every consultant's counter equal to their ACTIVE row count.
func checkInvariants(t *testing.T, db *gorm.DB) {
	t.Helper()

	var jobs []*domain.Job
	if err := db.Find(&jobs).Error; err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	for _, job := range jobs {
		var actives []*domain.ConsultantJobAssignment
		if err := db.Where("job_id = ? AND status = ?", job.ID, domain.AssignmentStatusActive).
			Find(&actives).Error; err != nil {
			t.Fatalf("list active assignments: %v", err)
		}
		if len(actives) > 1 {
			t.Fatalf("job %s has %d active assignments", job.ID, len(actives))
		}
		if len(actives) == 1 {
			if job.AssignedConsultantID == nil || *job.AssignedConsultantID != actives[0].ConsultantID {
				t.Fatalf("job %s assigned_consultant_id out of step with active assignment", job.ID)
			}
		} else if job.AssignedConsultantID != nil {
			t.Fatalf("job %s has assigned_consultant_id but no active assignment", job.ID)
		}
	}

	var consultants []*domain.Consultant
	if err := db.Find(&consultants).Error; err != nil {
		t.Fatalf("list consultants: %v", err)
	}
	for _, consultant := range consultants {
		var count int64
		if err := db.Model(&domain.ConsultantJobAssignment{}).
			Where("consultant_id = ? AND status = ?", consultant.ID, domain.AssignmentStatusActive).
			Count(&count).Error; err != nil {
			t.Fatalf("count active assignments: %v", err)
		}
		if int64(consultant.CurrentJobs) != count {
			t.Fatalf("consultant %s current_jobs=%d, active assignments=%d",
				consultant.ID, consultant.CurrentJobs, count)
		}
	}
}
