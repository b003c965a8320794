package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/talentvine/talentvine-backend/internal/http/response"
)

// Input validation runs before any service call, so a handler with no
// services wired is enough to exercise the bad-request paths.
func newValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAllocationHandler(nil, nil)

	router := gin.New()
	router.POST("/jobs/:id/assign", h.AssignJob)
	router.POST("/jobs/:id/unassign", h.UnassignJob)
	router.GET("/jobs", h.ListJobs)
	router.GET("/consultants", h.ListConsultants)
	return router
}

func TestHandlersRejectInvalidInput(t *testing.T) {
	router := newValidationRouter()

	cases := []struct {
		name   string
		method string
		target string
		body   string
		code   string
	}{
		{"bad job id on assign", http.MethodPost, "/jobs/not-a-uuid/assign", "", "invalid_job_id"},
		{"bad job id on unassign", http.MethodPost, "/jobs/not-a-uuid/unassign", "", "invalid_job_id"},
		{"missing consultant_id", http.MethodPost, "/jobs/6b9108db-5574-4f6a-9cc6-0b54d7deb870/assign", `{}`, "invalid_body"},
		{"bad region filter", http.MethodGet, "/jobs?region_ids=not-a-uuid", "", "invalid_region_id"},
		{"bad consultant filter", http.MethodGet, "/jobs?consultant_id=not-a-uuid", "", "invalid_consultant_id"},
		{"missing region on consultants", http.MethodGet, "/consultants", "", "invalid_region_id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			if tc.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var envelope response.ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if envelope.Error.Code != tc.code {
				t.Fatalf("code = %q, want %q", envelope.Error.Code, tc.code)
			}
		})
	}
}
