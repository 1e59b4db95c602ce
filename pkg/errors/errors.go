// Package errors provides typed errors shared by all CRM layers
package errors

import "errors"

// baseError is embedded by every typed error
type baseError struct {
	msg string
}

func (e *baseError) Error() string {
	return e.msg
}

// ValidationError is returned for malformed user input (400)
type ValidationError struct {
	baseError
}

// NewValidationError creates a new ValidationError
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{baseError{msg: msg}}
}

// NotFoundError is returned when a lookup has no match (404)
type NotFoundError struct {
	baseError
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(msg string) *NotFoundError {
	return &NotFoundError{baseError{msg: msg}}
}

// ConflictError is returned when a uniqueness rule is violated (409)
type ConflictError struct {
	baseError
}

// NewConflictError creates a new ConflictError
func NewConflictError(msg string) *ConflictError {
	return &ConflictError{baseError{msg: msg}}
}

// UnauthorizedError is returned when a caller could not be authenticated (401)
type UnauthorizedError struct {
	baseError
}

// NewUnauthorizedError creates a new UnauthorizedError
func NewUnauthorizedError(msg string) *UnauthorizedError {
	return &UnauthorizedError{baseError{msg: msg}}
}

// PermissionError is returned when an authenticated caller lacks rights (403)
type PermissionError struct {
	baseError
}

// NewPermissionError creates a new PermissionError
func NewPermissionError(msg string) *PermissionError {
	return &PermissionError{baseError{msg: msg}}
}

// InternalError wraps storage and transport failures (500)
type InternalError struct {
	baseError
}

// NewInternalError creates a new InternalError
func NewInternalError(msg string) *InternalError {
	return &InternalError{baseError{msg: msg}}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFoundError reports whether err wraps a NotFoundError
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflictError reports whether err wraps a ConflictError
func IsConflictError(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsUnauthorizedError reports whether err wraps an UnauthorizedError
func IsUnauthorizedError(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

// IsPermissionError reports whether err wraps a PermissionError
func IsPermissionError(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}

// IsInternalError reports whether err wraps an InternalError
func IsInternalError(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}
