package apierr

import (
	"fmt"
	"net/http"
)

// Error carries an HTTP status and a stable machine-readable code alongside
// the underlying cause. Handlers wrap request-level failures in it so the
// response layer can map them without guessing from error text.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// BadRequest tags an input-validation failure: malformed ids, unparseable
// bodies, missing required query parameters.
func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}
