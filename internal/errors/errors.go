// Package errors provides standardized error types for the API.
package errors

import (
	"fmt"
	"net/http"
)

// Code represents an API error code.
type Code string

const (
	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeUnknownProfile Code = "UNKNOWN_PROFILE"
	CodeNotFound       Code = "NOT_FOUND"
	CodeTextTooLarge   Code = "TEXT_TOO_LARGE"
	CodeInternal       Code = "INTERNAL_ERROR"
	CodeRateLimited    Code = "RATE_LIMITED"
	CodeUnavailable    Code = "UNAVAILABLE"
)

// APIError represents a structured API error.
type APIError struct {
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Common errors
var (
	ErrInternal       = &APIError{Code: CodeInternal, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError}
	ErrInvalidRequest = &APIError{Code: CodeInvalidRequest, Message: "Invalid request", HTTPStatus: http.StatusBadRequest}
	ErrRateLimited    = &APIError{Code: CodeRateLimited, Message: "Rate limit exceeded", HTTPStatus: http.StatusTooManyRequests}
	ErrNoStore        = &APIError{Code: CodeUnavailable, Message: "Dictionary store is not configured", HTTPStatus: http.StatusServiceUnavailable}
)

// NotFound creates a not found error with a custom message.
func NotFound(resource string) *APIError {
	return &APIError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// UnknownProfile reports a profile name with no registered converter.
func UnknownProfile(name string) *APIError {
	return &APIError{
		Code:       CodeUnknownProfile,
		Message:    fmt.Sprintf("Unknown profile: %q", name),
		HTTPStatus: http.StatusNotFound,
	}
}

// TextTooLarge reports a request whose text exceeds limit bytes.
func TextTooLarge(limit int) *APIError {
	return &APIError{
		Code:       CodeTextTooLarge,
		Message:    fmt.Sprintf("Text exceeds %d bytes", limit),
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}
}

// InvalidRequest creates a bad request error with a custom message.
func InvalidRequest(message string) *APIError {
	return &APIError{
		Code:       CodeInvalidRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates an internal error. An empty message uses the generic one.
func Internal(message string) *APIError {
	if message == "" {
		message = "Internal server error"
	}
	return &APIError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}
