package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentvine/talentvine-backend/internal/allocerr"
	"github.com/talentvine/talentvine-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondFromError maps the allocation error taxonomy onto HTTP statuses.
// Business and not-found errors surface unchanged; the transient class only
// reaches here after the one automatic retry has been spent.
func RespondFromError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae)
		return
	}

	switch {
	case errors.Is(err, allocerr.ErrJobNotFound):
		RespondError(c, http.StatusNotFound, "job_not_found", err)
	case errors.Is(err, allocerr.ErrConsultantNotFound):
		RespondError(c, http.StatusNotFound, "consultant_not_found", err)
	case errors.Is(err, allocerr.ErrReassignmentReasonRequired):
		RespondError(c, http.StatusUnprocessableEntity, "reassignment_reason_required", err)
	case errors.Is(err, allocerr.ErrNoEligibleConsultant):
		RespondError(c, http.StatusConflict, "no_eligible_consultant", err)
	case errors.Is(err, allocerr.ErrWaitBudgetExceeded), allocerr.IsTransientTx(err):
		RespondError(c, http.StatusServiceUnavailable, "allocation_busy", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
