package server

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/phrase"
	"github.com/roach88/stringsvc/internal/store"
)

// ErrValidation marks request input that failed validation.
// Use errors.Is(err, ErrValidation) to detect it.
var ErrValidation = errors.New("validation failed")

// validationError carries the status a validation failure maps to:
// 400 for missing or malformed input, 422 for wrong types or values.
type validationError struct {
	status int
	msg    string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }

func badRequest(format string, args ...any) error {
	return &validationError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func unprocessable(format string, args ...any) error {
	return &validationError{status: http.StatusUnprocessableEntity, msg: fmt.Sprintf(format, args...)}
}

// statusFor maps an error to its HTTP status and client-facing detail.
func statusFor(err error) (int, string) {
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		return ve.status, ve.msg
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "String does not exist"
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, "String already exists"
	case errors.Is(err, phrase.ErrUnparseable):
		return http.StatusBadRequest, "Unable to parse natural language query"
	case errors.Is(err, filter.ErrInvalidSet):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
