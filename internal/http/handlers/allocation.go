package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentvine/talentvine-backend/internal/data/repos"
	"github.com/talentvine/talentvine-backend/internal/http/middleware"
	"github.com/talentvine/talentvine-backend/internal/http/response"
	"github.com/talentvine/talentvine-backend/internal/platform/apierr"
	"github.com/talentvine/talentvine-backend/internal/platform/dbctx"
	"github.com/talentvine/talentvine-backend/internal/services"
)

type AllocationHandler struct {
	allocation services.AllocationService
	selection  services.SelectionService
}

func NewAllocationHandler(allocation services.AllocationService, selection services.SelectionService) *AllocationHandler {
	return &AllocationHandler{allocation: allocation, selection: selection}
}

type assignRequest struct {
	ConsultantID uuid.UUID  `json:"consultant_id" binding:"required"`
	Reason       string     `json:"reason"`
	Source       string     `json:"source"`
	Mode         string     `json:"mode"`
	RegionID     *uuid.UUID `json:"region_id"`
}

// POST /api/allocation/jobs/:id/assign
func (h *AllocationHandler) AssignJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apierr.BadRequest("invalid_job_id", err))
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondFromError(c, apierr.BadRequest("invalid_body", err))
		return
	}

	actorID, actorName := middleware.Actor(c)
	result, err := h.allocation.Allocate(c.Request.Context(), services.AllocateParams{
		JobID:          jobID,
		ConsultantID:   req.ConsultantID,
		AssignedBy:     actorID,
		AssignedByName: actorName,
		Reason:         req.Reason,
		Source:         req.Source,
		Mode:           req.Mode,
		RegionID:       req.RegionID,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type autoAssignRequest struct {
	Reason string `json:"reason"`
}

// POST /api/allocation/jobs/:id/auto-assign
func (h *AllocationHandler) AutoAssignJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apierr.BadRequest("invalid_job_id", err))
		return
	}
	var req autoAssignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondFromError(c, apierr.BadRequest("invalid_body", err))
			return
		}
	}

	actorID, actorName := middleware.Actor(c)
	result, err := h.selection.AutoAssign(c.Request.Context(), jobID, services.AutoAssignMeta{
		AssignedBy:     actorID,
		AssignedByName: actorName,
		Reason:         req.Reason,
	})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// POST /api/allocation/jobs/:id/unassign
func (h *AllocationHandler) UnassignJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apierr.BadRequest("invalid_job_id", err))
		return
	}
	if err := h.allocation.Unassign(c.Request.Context(), jobID); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job_id": jobID, "unassigned": true})
}

// GET /api/allocation/jobs
func (h *AllocationHandler) ListJobs(c *gin.Context) {
	filters := repos.JobFilters{
		CompanyName:      c.Query("company"),
		Search:           c.Query("search"),
		AssignmentStatus: c.DefaultQuery("assignment_status", "all"),
		Limit:            queryInt(c, "limit", 20),
		Offset:           queryInt(c, "offset", 0),
	}
	for _, raw := range strings.Split(c.Query("region_ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		regionID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondFromError(c, apierr.BadRequest("invalid_region_id", err))
			return
		}
		filters.RegionIDs = append(filters.RegionIDs, regionID)
	}
	if raw := c.Query("consultant_id"); raw != "" {
		consultantID, err := uuid.Parse(raw)
		if err != nil {
			response.RespondFromError(c, apierr.BadRequest("invalid_consultant_id", err))
			return
		}
		filters.ConsultantID = &consultantID
	}

	jobs, total, err := h.selection.FindJobsForAllocation(dbctx.Context{Ctx: c.Request.Context()}, filters)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"jobs":   jobs,
		"total":  total,
		"limit":  filters.Limit,
		"offset": filters.Offset,
	})
}

// GET /api/allocation/jobs/:id/consultants
func (h *AllocationHandler) ListJobConsultants(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondFromError(c, apierr.BadRequest("invalid_job_id", err))
		return
	}
	views, err := h.allocation.FindConsultantsByJob(dbctx.Context{Ctx: c.Request.Context()}, jobID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": views})
}

// GET /api/allocation/consultants
func (h *AllocationHandler) ListConsultants(c *gin.Context) {
	regionID, err := uuid.Parse(c.Query("region_id"))
	if err != nil {
		response.RespondFromError(c, apierr.BadRequest("invalid_region_id", err))
		return
	}
	criteria := repos.EligibilityCriteria{
		RegionID:     regionID,
		Role:         c.Query("role"),
		Availability: c.Query("availability"),
		Industry:     c.Query("industry"),
		Language:     c.Query("language"),
		Search:       c.Query("search"),
		Limit:        queryInt(c, "limit", 20),
		Offset:       queryInt(c, "offset", 0),
	}

	consultants, hasMore, err := h.selection.GetConsultantsForAssignment(dbctx.Context{Ctx: c.Request.Context()}, criteria)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"consultants": consultants,
		"has_more":    hasMore,
		"limit":       criteria.Limit,
		"offset":      criteria.Offset,
	})
}

// GET /api/allocation/stats
func (h *AllocationHandler) GetStats(c *gin.Context) {
	stats, err := h.selection.GetStats(dbctx.Context{Ctx: c.Request.Context()})
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
