package reconcile

import (
	"errors"
	"fmt"
	"slices"

	"github.com/erazemk/najdeno/internal/model"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDuplicateClaim   = errors.New("a pending claim for this item already exists")

	// ErrExternalService wraps scorer failures in logs. FindMatches never returns it.
	ErrExternalService = errors.New("external service unavailable")
)

// ValidationError reports invalid caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   model.Role
}

// RequireRole fails with ErrPermissionDenied unless the actor holds one of
// the allowed roles. Callers check it before touching storage.
func RequireRole(actor Actor, allowed ...model.Role) error {
	if actor.Role.Valid() && slices.Contains(allowed, actor.Role) {
		return nil
	}
	return fmt.Errorf("%w: role %q may not perform this operation", ErrPermissionDenied, actor.Role)
}

var staffRoles = []model.Role{model.RoleStaff, model.RoleAdmin}

var anyRole = []model.Role{model.RoleStudent, model.RoleStaff, model.RoleAdmin}
