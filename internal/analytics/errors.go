package analytics

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an analytics failure the caller can map to an HTTP status.
type Error struct {
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports an invalid option supplied by the caller.
func BadRequest(format string, args ...any) *Error {
	return &Error{Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err carries a 404 analytics error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsBadRequest reports whether err carries a 400 analytics error.
func IsBadRequest(err error) bool {
	return StatusCode(err) == http.StatusBadRequest
}

// StatusCode returns the status attached to err, or 500 for anything else.
func StatusCode(err error) int {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Code
	}
	return http.StatusInternalServerError
}
