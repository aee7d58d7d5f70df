package http

import (
	"fmt"
	"net/http"
)

// AppError is an error that knows its HTTP status and public code.
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Status  int               `json:"-"`
	cause   error
}

func (e *AppError) Error() string {
	if e.cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.cause.Error()
}

func (e *AppError) Unwrap() error { return e.cause }

// Because records the underlying error without exposing it to clients.
func (e *AppError) Because(err error) *AppError {
	e.cause = err
	return e
}

// Detail attaches a key/value pair to the response body.
func (e *AppError) Detail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = map[string]string{}
	}
	e.Details[key] = value
	return e
}

func newAppError(status int, code, format string, a []interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, a...), Status: status}
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusNotFound, "ERR_NOT_FOUND", format, a)
}

func InternalErrorf(format string, a ...interface{}) *AppError {
	return newAppError(http.StatusInternalServerError, "ERR_INTERNAL", format, a)
}
