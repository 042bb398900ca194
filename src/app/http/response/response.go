// Package response defines consistent HTTP error responses.
// Successful payloads are written as bare JSON objects for the web client.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gussgame/src/core/domain"
)

// Error represents an error response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "ROUND_NOT_ACTIVE")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Field is the field that caused the error (for validation errors)
	Field string `json:"field,omitempty"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func abort(c *gin.Context, status int, code, message, field, requestID string) {
	c.AbortWithStatusJSON(status, Error{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Field:     field,
			RequestID: requestID,
		},
	})
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string, requestID string) {
	abort(c, http.StatusBadRequest, "BAD_REQUEST", message, "", requestID)
}

// ValidationError sends a 400 response for validation failures.
func ValidationError(c *gin.Context, field, message, requestID string) {
	abort(c, http.StatusBadRequest, "VALIDATION_ERROR", message, field, requestID)
}

// RoundNotActive sends a 400 response for taps outside the active window.
func RoundNotActive(c *gin.Context, requestID string) {
	abort(c, http.StatusBadRequest, "ROUND_NOT_ACTIVE", domain.ErrRoundNotActive.Error(), "", requestID)
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message, requestID string) {
	abort(c, http.StatusNotFound, "NOT_FOUND", message, "", requestID)
}

// Conflict sends a 409 response.
func Conflict(c *gin.Context, message, requestID string) {
	abort(c, http.StatusConflict, "CONFLICT", message, "", requestID)
}

// Forbidden sends a 403 response.
func Forbidden(c *gin.Context, message, requestID string) {
	abort(c, http.StatusForbidden, "FORBIDDEN", message, "", requestID)
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message, requestID string) {
	abort(c, http.StatusUnauthorized, "UNAUTHORIZED", message, "", requestID)
}

// TooManyRequests sends a 429 response.
func TooManyRequests(c *gin.Context, requestID string) {
	abort(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", "", requestID)
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, requestID string) {
	abort(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", "", requestID)
}

// FromDomainError converts a domain error to an appropriate HTTP response.
// Unrecognised errors are attached to the context for the access log and
// reported as 500 without details.
func FromDomainError(c *gin.Context, err error, requestID string) {
	switch {
	case domain.IsRoundNotActive(err):
		RoundNotActive(c, requestID)
	case domain.IsNotFound(err):
		NotFound(c, err.Error(), requestID)
	case domain.IsValidationError(err):
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			ValidationError(c, domainErr.Field, domainErr.Message, requestID)
		} else {
			BadRequest(c, err.Error(), requestID)
		}
	case domain.IsConflict(err):
		Conflict(c, err.Error(), requestID)
	case domain.IsForbidden(err):
		Forbidden(c, err.Error(), requestID)
	case domain.IsUnauthorized(err):
		Unauthorized(c, err.Error(), requestID)
	default:
		_ = c.Error(err)
		InternalError(c, requestID)
	}
}
