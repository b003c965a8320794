package allocerr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Business and not-found failures of the allocation engine. These propagate
// to the caller unchanged and are never retried.
var (
	ErrJobNotFound                = errors.New("job not found")
	ErrConsultantNotFound         = errors.New("consultant not found")
	ErrReassignmentReasonRequired = errors.New("a reason is required when reassigning to a different consultant")
	ErrNoEligibleConsultant       = errors.New("no eligible consultant for the job's region")
	ErrWaitBudgetExceeded         = errors.New("transaction wait budget exceeded")
)

// TransientTxError tags an infrastructure failure that is safe to retry
// once with fresh reads. Business errors are never wrapped in it.
type TransientTxError struct {
	Err error
}

func (e *TransientTxError) Error() string {
	if e == nil || e.Err == nil {
		return "transient transaction conflict"
	}
	return "transient transaction conflict: " + e.Err.Error()
}

func (e *TransientTxError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable transaction failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientTxError{Err: err}
}

// IsTransientTx reports whether err belongs to the single retryable class:
// an explicitly tagged TransientTxError, a Postgres serialization failure
// (40001) or deadlock (40P01), or GORM's lost-transaction sentinel. The
// check is structural; error message text is never consulted.
func IsTransientTx(err error) bool {
	if err == nil {
		return false
	}
	var tt *TransientTxError
	if errors.As(err, &tt) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}
	return errors.Is(err, gorm.ErrInvalidTransaction)
}
