package http

import (
	"fmt"
	"net/http"
)

// AppError is an error reported to API clients as-is.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// WithError attaches the cause; it is logged, never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

func newAppError(status int, code, format string, a ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, a...), Status: status}
}

func NotFound(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusNotFound, "ERR_NOT_FOUND", format, a...)
}

func BadRequest(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusBadRequest, "ERR_BAD_REQUEST", format, a...)
}

func TooManyRequests() *AppError {
	return newAppError(http.StatusTooManyRequests, "ERR_RATE_LIMITED", "too many requests")
}

func Internal() *AppError {
	return newAppError(http.StatusInternalServerError, "ERR_INTERNAL", "something went wrong")
}
