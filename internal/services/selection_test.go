package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/talentvine/talentvine-backend/internal/allocerr"
	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/domain"
	"github.com/talentvine/talentvine-backend/internal/platform/dbctx"
)

func TestGetConsultantsForAssignmentRanksByLoad(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	region := uuid.New()
	busy := seedConsultant(t, fx.db, &region, "Ana")
	idle := seedConsultant(t, fx.db, &region, "Ben")
	otherRegion := uuid.New()
	seedConsultant(t, fx.db, &otherRegion, "Cleo")

	if err := fx.db.Model(&domain.Consultant{}).
		Where("id = ?", busy.ID).
		Update("current_jobs", 3).Error; err != nil {
		t.Fatalf("seed load: %v", err)
	}

	results, hasMore, err := fx.selection.GetConsultantsForAssignment(dbctx.Context{Ctx: ctx}, repos.EligibilityCriteria{
		RegionID: region,
	})
	if err != nil {
		t.Fatalf("list eligible: %v", err)
	}
	if hasMore {
		t.Fatal("unexpected hasMore")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 eligible consultants, got %d", len(results))
	}
	if results[0].ID != idle.ID || results[1].ID != busy.ID {
		t.Fatal("eligible consultants not ranked by ascending load")
	}
}

func TestGetConsultantsForAssignmentPagination(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	region := uuid.New()
	for _, name := range []string{"Ana", "Ben", "Cleo"} {
		seedConsultant(t, fx.db, &region, name)
	}

	page, hasMore, err := fx.selection.GetConsultantsForAssignment(dbctx.Context{Ctx: ctx}, repos.EligibilityCriteria{
		RegionID: region,
		Limit:    2,
	})
	if err != nil {
		t.Fatalf("list eligible: %v", err)
	}
	if len(page) != 2 || !hasMore {
		t.Fatalf("page=%d hasMore=%v", len(page), hasMore)
	}

	rest, hasMore, err := fx.selection.GetConsultantsForAssignment(dbctx.Context{Ctx: ctx}, repos.EligibilityCriteria{
		RegionID: region,
		Limit:    2,
		Offset:   2,
	})
	if err != nil {
		t.Fatalf("list eligible offset: %v", err)
	}
	if len(rest) != 1 || hasMore {
		t.Fatalf("rest=%d hasMore=%v", len(rest), hasMore)
	}
}

func TestGetConsultantsForAssignmentExcludesInactive(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	region := uuid.New()
	active := seedConsultant(t, fx.db, &region, "Ana")
	inactive := seedConsultant(t, fx.db, &region, "Ben")
	if err := fx.db.Model(&domain.Consultant{}).
		Where("id = ?", inactive.ID).
		Update("active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	results, _, err := fx.selection.GetConsultantsForAssignment(dbctx.Context{Ctx: ctx}, repos.EligibilityCriteria{
		RegionID: region,
	})
	if err != nil {
		t.Fatalf("list eligible: %v", err)
	}
	if len(results) != 1 || results[0].ID != active.ID {
		t.Fatal("inactive consultant leaked into eligible set")
	}
}

func TestAutoAssignPicksLeastLoaded(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	region := uuid.New()
	job := seedJob(t, fx.db, &region)
	busy := seedConsultant(t, fx.db, &region, "Ana")
	idle := seedConsultant(t, fx.db, &region, "Ben")

	if err := fx.db.Model(&domain.Consultant{}).
		Where("id = ?", busy.ID).
		Update("current_jobs", 2).Error; err != nil {
		t.Fatalf("seed load: %v", err)
	}

	result, err := fx.selection.AutoAssign(ctx, job.ID, AutoAssignMeta{
		AssignedBy:     uuid.New(),
		AssignedByName: "Scheduler",
	})
	if err != nil {
		t.Fatalf("auto assign: %v", err)
	}
	if result.TargetConsultant.ID != idle.ID {
		t.Fatal("auto assign did not pick the least-loaded consultant")
	}
	if result.Assignment.AssignmentSource != domain.AssignmentSourceAuto {
		t.Fatalf("auto assign source = %q", result.Assignment.AssignmentSource)
	}
	reloaded := reloadJob(t, fx.db, job.ID)
	if reloaded.AssignmentMode != domain.AssignmentModeAuto {
		t.Fatalf("auto assign mode = %q", reloaded.AssignmentMode)
	}
	checkInvariants(t, fx.db)
}

func TestAutoAssignNoEligibleConsultant(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	meta := AutoAssignMeta{AssignedBy: uuid.New()}

	// Job without a region has an empty eligible set.
	regionless := seedJob(t, fx.db, nil)
	if _, err := fx.selection.AutoAssign(ctx, regionless.ID, meta); !errors.Is(err, allocerr.ErrNoEligibleConsultant) {
		t.Fatalf("expected ErrNoEligibleConsultant for regionless job, got %v", err)
	}

	// Region with no consultants.
	region := uuid.New()
	empty := seedJob(t, fx.db, &region)
	if _, err := fx.selection.AutoAssign(ctx, empty.ID, meta); !errors.Is(err, allocerr.ErrNoEligibleConsultant) {
		t.Fatalf("expected ErrNoEligibleConsultant for empty region, got %v", err)
	}

	if _, err := fx.selection.AutoAssign(ctx, uuid.New(), meta); !errors.Is(err, allocerr.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestFindJobsForAllocationFacets(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	region := uuid.New()
	assigned := seedJob(t, fx.db, &region)
	unassigned := seedJob(t, fx.db, &region)
	consultant := seedConsultant(t, fx.db, &region, "Ana")

	closed := seedJob(t, fx.db, &region)
	if err := fx.db.Model(&domain.Job{}).
		Where("id = ?", closed.ID).
		Update("status", domain.JobStatusClosed).Error; err != nil {
		t.Fatalf("close job: %v", err)
	}

	if _, err := fx.allocation.Allocate(ctx, AllocateParams{
		JobID: assigned.ID, ConsultantID: consultant.ID, AssignedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	dbc := dbctx.Context{Ctx: ctx}

	all, total, err := fx.selection.FindJobsForAllocation(dbc, repos.JobFilters{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("all facet: total=%d len=%d", total, len(all))
	}

	got, total, err := fx.selection.FindJobsForAllocation(dbc, repos.JobFilters{AssignmentStatus: "assigned"})
	if err != nil {
		t.Fatalf("list assigned: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != assigned.ID {
		t.Fatalf("assigned facet mismatch: total=%d", total)
	}

	got, total, err = fx.selection.FindJobsForAllocation(dbc, repos.JobFilters{AssignmentStatus: "unassigned"})
	if err != nil {
		t.Fatalf("list unassigned: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != unassigned.ID {
		t.Fatalf("unassigned facet mismatch: total=%d", total)
	}

	got, total, err = fx.selection.FindJobsForAllocation(dbc, repos.JobFilters{ConsultantID: &consultant.ID})
	if err != nil {
		t.Fatalf("list by consultant: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != assigned.ID {
		t.Fatalf("consultant filter mismatch: total=%d", total)
	}
}

func TestGetStats(t *testing.T) {
	fx := newEngine(t)
	ctx := context.Background()
	region := uuid.New()
	assigned := seedJob(t, fx.db, &region)
	seedJob(t, fx.db, &region)
	seedJob(t, fx.db, &region)
	consultant := seedConsultant(t, fx.db, &region, "Ana")

	if _, err := fx.allocation.Allocate(ctx, AllocateParams{
		JobID: assigned.ID, ConsultantID: consultant.ID, AssignedBy: uuid.New(),
	}); err != nil {
		t.Fatalf("allocate: %v", err)
	}

	stats, err := fx.selection.GetStats(dbctx.Context{Ctx: ctx})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Assigned != 1 || stats.Unassigned != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}
