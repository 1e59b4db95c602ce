// Package errors contains domain errors for the CRM
package errors

import (
	pkgerrors "github.com/PersifalJun/CRM-Telegram-Bot/pkg/errors"
)

// Domain errors for CRM operations
var (
	ErrUserNotFound       = pkgerrors.NewNotFoundError("user not found")
	ErrLeadDuplicate      = pkgerrors.NewConflictError("Lead with this phone already exists")
	ErrChatAlreadyExists  = pkgerrors.NewConflictError("chat already registered")
	ErrInvalidAPIKey      = pkgerrors.NewUnauthorizedError("Unauthorized")
	ErrInvalidLead        = pkgerrors.NewValidationError("invalid lead")
	ErrDatabaseOperation  = pkgerrors.NewInternalError("database operation failed")
	ErrEventPublishFailed = pkgerrors.NewInternalError("lead event publish failed")
)
