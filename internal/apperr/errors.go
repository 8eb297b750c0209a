// Package apperr defines the error type services use to report failures
// that carry an HTTP status and a client-safe message.
package apperr

import (
	"errors"
	"net/http"
)

// Error is a failure with a status code and a message that can be shown to
// clients. Details holds per-field messages for validation failures.
type Error struct {
	Status  int
	Message string
	Details []string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds an Error with the given status and message.
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return New(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return New(http.StatusNotFound, message) }
func Conflict(message string) *Error     { return New(http.StatusConflict, message) }
func BadRequest(message string) *Error   { return New(http.StatusBadRequest, message) }

// Internal hides the cause behind the generic message.
func Internal() *Error {
	return New(http.StatusInternalServerError, "Internal server error")
}

// Validation reports one message per rejected field.
func Validation(details []string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: "Bad Request", Details: details}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf returns the status carried by err, or 500 for anything else.
func StatusOf(err error) int {
	if e, ok := As(err); ok {
		return e.Status
	}
	return http.StatusInternalServerError
}
