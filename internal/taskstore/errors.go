package taskstore

import (
	"errors"
	"fmt"

	"livetask/internal/service"
)

var (
	// ErrTitleRequired is returned when a title is empty after trimming.
	ErrTitleRequired = errors.New("task title cannot be empty")

	// ErrTaskNotFound is returned when an ID is not in the current snapshot.
	// The snapshot may be stale; reloading may help.
	ErrTaskNotFound = errors.New("task not found, reload and try again")

	// ErrCancelled is returned when the user declines a confirmation prompt.
	ErrCancelled = errors.New("cancelled")

	// ErrNotActive is returned when waiting on a store that was never activated.
	ErrNotActive = errors.New("task store is not active")

	// ErrAlreadyActive is returned by Activate on an active store.
	ErrAlreadyActive = errors.New("task store is already active")
)

// WriteError reports a write rejected by the backend.
type WriteError struct {
	Op  string // create, update, toggle, delete
	ID  string // empty for create
	Err error
}

func (e *WriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s task: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s task %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// IsValidation reports whether err was raised by input validation,
// before any backend call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrTitleRequired) || errors.Is(err, service.ErrInvalidPriority)
}
