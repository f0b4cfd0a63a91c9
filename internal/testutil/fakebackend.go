// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"livetask/internal/service"
)

// BaseTime is the creation time assigned to the first task written to a
// FakeBackend. Each later task is one second newer.
var BaseTime = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// FakeBackend is an in-memory implementation of service.Backend for testing.
// Snapshots are delivered synchronously: when a write returns, every live
// subscription has already seen the resulting snapshot.
type FakeBackend struct {
	mu     sync.RWMutex
	docs   map[string]service.Task
	subs   []*fakeSubscription
	clock  time.Time
	writes int
	watchs int
	closed bool

	// deliverMu serializes snapshot delivery so subscribers never see an
	// older snapshot after a newer one.
	deliverMu sync.Mutex

	// Error injection for testing
	WatchErr        error
	CreateTaskErr   error
	UpdateTaskErr   error
	SetCompletedErr error
	DeleteTaskErr   error
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		docs:  make(map[string]service.Task),
		clock: BaseTime,
	}
}

// SeedTask stores a task without counting it as a write.
// A zero CreatedAt is replaced with the next fake server time.
func (f *FakeBackend) SeedTask(task service.Task) {
	f.mu.Lock()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = f.nextTimeLocked()
	}
	task.Priority = task.Priority.OrDefault()
	f.docs[task.ID] = task
	f.mu.Unlock()
	f.publish()
}

// Task returns the stored document with the given ID.
func (f *FakeBackend) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	t, ok := f.docs[id]
	return t, ok
}

// Writes returns the number of write calls that reached the store,
// including ones that failed through error injection.
func (f *FakeBackend) Writes() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.writes
}

// WatchCalls returns how many times Watch has been called.
func (f *FakeBackend) WatchCalls() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.watchs
}

// ActiveSubscriptions returns the number of subscriptions not yet stopped.
func (f *FakeBackend) ActiveSubscriptions() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Closed reports whether Close has been called.
func (f *FakeBackend) Closed() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.closed
}

// BreakSubscriptions pushes err to every live subscription and ends them,
// as a dropped connection would.
func (f *FakeBackend) BreakSubscriptions(err error) {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	f.mu.Lock()
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()

	for _, s := range subs {
		s.deliver(service.Snapshot{Err: err})
		s.end()
	}
}

// Watch implements service.Backend.
func (f *FakeBackend) Watch(ctx context.Context, fn func(service.Snapshot)) (service.Subscription, error) {
	f.mu.Lock()
	f.watchs++
	if f.WatchErr != nil {
		f.mu.Unlock()
		return nil, f.WatchErr
	}
	sub := &fakeSubscription{owner: f, fn: fn}
	f.subs = append(f.subs, sub)
	f.mu.Unlock()

	f.deliverMu.Lock()
	sub.deliver(service.Snapshot{Tasks: f.snapshot()})
	f.deliverMu.Unlock()
	return sub, nil
}

// CreateTask implements service.Backend.
func (f *FakeBackend) CreateTask(ctx context.Context, task service.NewTask) (string, error) {
	f.mu.Lock()
	f.writes++
	if f.CreateTaskErr != nil {
		f.mu.Unlock()
		return "", f.CreateTaskErr
	}
	id := uuid.NewString()
	f.docs[id] = service.Task{
		ID:          id,
		Title:       task.Title,
		Description: task.Description,
		Completed:   false,
		Priority:    task.Priority.OrDefault(),
		CreatedAt:   f.nextTimeLocked(),
	}
	f.mu.Unlock()

	f.publish()
	return id, nil
}

// UpdateTask implements service.Backend.
func (f *FakeBackend) UpdateTask(ctx context.Context, id string, fields service.TaskFields) error {
	f.mu.Lock()
	f.writes++
	if f.UpdateTaskErr != nil {
		f.mu.Unlock()
		return f.UpdateTaskErr
	}
	t, ok := f.docs[id]
	if !ok {
		f.mu.Unlock()
		return service.ErrNotFound
	}
	t.Title = fields.Title
	t.Description = fields.Description
	t.Completed = fields.Completed
	t.Priority = fields.Priority
	f.docs[id] = t
	f.mu.Unlock()

	f.publish()
	return nil
}

// SetCompleted implements service.Backend.
func (f *FakeBackend) SetCompleted(ctx context.Context, id string, completed bool) error {
	f.mu.Lock()
	f.writes++
	if f.SetCompletedErr != nil {
		f.mu.Unlock()
		return f.SetCompletedErr
	}
	t, ok := f.docs[id]
	if !ok {
		f.mu.Unlock()
		return service.ErrNotFound
	}
	t.Completed = completed
	f.docs[id] = t
	f.mu.Unlock()

	f.publish()
	return nil
}

// DeleteTask implements service.Backend.
func (f *FakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	f.writes++
	if f.DeleteTaskErr != nil {
		f.mu.Unlock()
		return f.DeleteTaskErr
	}
	delete(f.docs, id)
	f.mu.Unlock()

	f.publish()
	return nil
}

// Close implements service.Backend.
func (f *FakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FakeBackend) nextTimeLocked() time.Time {
	t := f.clock
	f.clock = f.clock.Add(time.Second)
	return t
}

// snapshot returns all tasks ordered newest first.
func (f *FakeBackend) snapshot() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks := make([]service.Task, 0, len(f.docs))
	for _, t := range f.docs {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks
}

func (f *FakeBackend) publish() {
	f.deliverMu.Lock()
	defer f.deliverMu.Unlock()

	snap := f.snapshot()
	f.mu.RLock()
	subs := make([]*fakeSubscription, len(f.subs))
	copy(subs, f.subs)
	f.mu.RUnlock()

	for _, s := range subs {
		// each subscriber gets its own slice
		tasks := make([]service.Task, len(snap))
		copy(tasks, snap)
		s.deliver(service.Snapshot{Tasks: tasks})
	}
}

func (f *FakeBackend) remove(sub *fakeSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.subs {
		if s == sub {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return
		}
	}
}

type fakeSubscription struct {
	owner *FakeBackend
	fn    func(service.Snapshot)

	mu      sync.Mutex
	stopped bool
}

func (s *fakeSubscription) deliver(snap service.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.fn(snap)
}

func (s *fakeSubscription) end() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Stop implements service.Subscription.
func (s *fakeSubscription) Stop() {
	s.end()
	s.owner.remove(s)
}
