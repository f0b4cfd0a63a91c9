// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultPriority is used when no priority is given.
const DefaultPriority = PriorityMedium

// ErrInvalidPriority is returned for priorities outside high/medium/low.
var ErrInvalidPriority = errors.New("invalid priority")

// ParsePriority parses a priority name (case-insensitive, trimmed).
// An empty string yields DefaultPriority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultPriority, nil
	case "high":
		return PriorityHigh, nil
	case "medium":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	}
	return "", fmt.Errorf("%w: %s (want high, medium or low)", ErrInvalidPriority, s)
}

// OrDefault returns p, or DefaultPriority if p is empty.
func (p Priority) OrDefault() Priority {
	if p == "" {
		return DefaultPriority
	}
	return p
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task represents a single task document.
type Task struct {
	ID          string
	Title       string
	Description string // "" when the task has no description
	Completed   bool
	Priority    Priority
	CreatedAt   time.Time // server-assigned
}

// Fields returns the mutable fields of the task.
func (t Task) Fields() TaskFields {
	return TaskFields{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		Priority:    t.Priority,
	}
}

// NewTask holds the fields supplied when creating a task.
// Completed is always false and CreatedAt is assigned by the backend.
type NewTask struct {
	Title       string
	Description string
	Priority    Priority
}

// TaskFields is the full replacement set of mutable task fields.
type TaskFields struct {
	Title       string
	Description string
	Completed   bool
	Priority    Priority
}

// Snapshot is one push from a live subscription.
// Either Tasks holds the complete result set (newest first) or Err is set
// and the subscription has ended.
type Snapshot struct {
	Tasks []Task
	Err   error
}
