// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrConflict      = errors.New("conflicting state")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "matching", "trust", "filter"
	Op      string // Operation that failed, e.g., "FormGroups", "Submit"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Profile domain errors
var (
	ErrProfileNotFound = NewDomainError("profile", "Find", ErrNotFound, "user profile not found")
	ErrInvalidUserID   = NewDomainError("profile", "Validate", ErrInvalidID, "invalid user ID")
)

// Matching domain errors
var (
	ErrMissingSeedUser   = NewDomainError("matching", "Validate", ErrInvalidInput, "seed user is required")
	ErrInvalidGroupSize  = NewDomainError("matching", "Validate", ErrValueOutOfRange, "group size must be at least 2")
	ErrInvalidOverride   = NewDomainError("matching", "Validate", ErrInvalidInput, "malformed override group list")
	ErrEventNotFound     = NewDomainError("matching", "ResolveEvent", ErrNotFound, "match event not found")
	ErrInvalidThresholds = NewDomainError("matching", "Validate", ErrValueOutOfRange, "invalid score thresholds")
)

// Trust domain errors
var (
	ErrEmptyPriorityCriteria = NewDomainError("trust", "SetCriteria", ErrInvalidInput, "priority criteria cannot be empty")
	ErrDuplicateCriterion    = NewDomainError("trust", "SetCriteria", ErrInvalidInput, "criterion listed as both priority and general")
)

// Filter domain errors
var (
	ErrRequestNotFound = NewDomainError("filter", "Find", ErrNotFound, "filter request not found")
	ErrRequestPending  = NewDomainError("filter", "Submit", ErrConflict, "a filter request is already pending")
	ErrRequestFinal    = NewDomainError("filter", "Review", ErrStateTransition, "filter request already finalized")
	ErrEmptyFilters    = NewDomainError("filter", "Submit", ErrEmptyValue, "no filters submitted")
)

// Notification domain errors
var (
	ErrNotificationFailed = NewDomainError("notification", "Send", ErrExternalService, "failed to deliver notification")
	ErrPushFailed         = NewDomainError("notification", "Push", ErrExternalService, "failed to deliver push alert")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if the error is a conflicting-state error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrStateTransition)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
