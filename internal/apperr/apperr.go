// Package apperr defines the domain error taxonomy shared by services
// and handlers. Services wrap these sentinels with context via %w and
// handlers map them to HTTP status codes with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConstraintViolation means a uniqueness constraint was violated
	// (duplicate email, tag name or project+user membership pair).
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrCrossProjectViolation means a task and its candidate parent
	// belong to different projects.
	ErrCrossProjectViolation = errors.New("parent task belongs to a different project")

	// ErrCycleDetected means a reparent would make a task its own ancestor.
	ErrCycleDetected = errors.New("reparenting would create a cycle")

	// ErrForbidden means the actor is not authorized for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnsupportedOperation means the requested delete mode is not
	// supported by the task store.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrInvalidInput means a value is outside its allowed domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthenticated means the request carries no valid credential.
	ErrUnauthenticated = errors.New("unauthenticated")
)
