// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the addressed task document does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrUnauthenticated is returned when the backend rejects or lacks
	// credentials.
	ErrUnauthenticated = errors.New("credentials rejected")
)

// Backend defines the interface for a real-time task document store.
// Commands and the task store never import a database SDK directly.
type Backend interface {
	// Watch opens a live query over the task collection ordered by
	// creation time, newest first. fn is called with the full result set
	// on every change, or once with Err set if the query breaks.
	// fn is never called after Subscription.Stop returns.
	Watch(ctx context.Context, fn func(Snapshot)) (Subscription, error)

	// CreateTask writes a new task with a generated ID, Completed=false
	// and a server-assigned creation time. Returns the new ID.
	CreateTask(ctx context.Context, task NewTask) (string, error)

	// UpdateTask overwrites the four mutable fields of a task.
	// Returns ErrNotFound if the task does not exist.
	UpdateTask(ctx context.Context, id string, fields TaskFields) error

	// SetCompleted sets the completion flag of a task.
	// Returns ErrNotFound if the task does not exist.
	SetCompleted(ctx context.Context, id string, completed bool) error

	// DeleteTask removes a task. Deleting a missing task is not an error.
	DeleteTask(ctx context.Context, id string) error

	// Close releases the backend connection.
	Close() error
}

// Subscription is a live query handle.
type Subscription interface {
	// Stop tears the query down and waits for in-flight callbacks.
	// Calling Stop more than once is safe.
	Stop()
}
