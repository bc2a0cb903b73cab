package apperr

import (
	"errors"
	"net/http"
)

// Error is the single error type services raise. Handlers never build their
// own status codes; they hand any Error to the response helpers unchanged.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Operational reports whether the error is safe to surface verbatim to the
// client. Anything below 500 is; internal errors get masked in prod.
func (e *Error) Operational() bool {
	return e.Status < http.StatusInternalServerError
}

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "invalid_request", Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Message: message}
}

func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: message}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Message: message, Err: err}
}

// From normalizes any error into an *Error, wrapping unknown errors as 500s.
func From(err error) *Error {
	var apiErr *Error

	if errors.As(err, &apiErr) {
		return apiErr
	}

	return Internal("Something went wrong", err)
}
