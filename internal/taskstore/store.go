// Package taskstore keeps the live task list in sync with a real-time backend
// and exposes the operations that mutate it.
//
// The store never edits its list locally. Every mutation is a write to the
// backend, and the list changes only when the backend's live subscription
// pushes the next snapshot.
package taskstore

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"livetask/internal/service"
)

// State is a point-in-time copy of the store's observable state.
type State struct {
	Tasks   []service.Task
	Loading bool
	Err     error // subscription failure, cleared by the next snapshot
}

// Option configures a Store.
type Option func(*Store)

// WithNotifier sets where user-visible notices go.
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithConfirmer sets how delete confirmations are answered.
func WithConfirmer(c Confirmer) Option {
	return func(s *Store) { s.confirmer = c }
}

// WithLogger sets the logger for lifecycle and write events.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithChangeHandler registers fn to be called with the new state after
// every snapshot or subscription error. fn runs on the backend's delivery
// goroutine and must not call back into the store.
func WithChangeHandler(fn func(State)) Option {
	return func(s *Store) { s.onChange = fn }
}

// Store owns the in-memory task list for one backend.
type Store struct {
	backend   service.Backend
	notifier  Notifier
	confirmer Confirmer
	logger    *log.Logger
	onChange  func(State)

	mu      sync.RWMutex
	tasks   []service.Task
	loading bool
	err     error

	active bool
	sub    service.Subscription
	// gen identifies the current activation cycle; deliveries tagged with
	// an older gen are dropped.
	gen        uint64
	ready      chan struct{}
	readyFired bool
}

// New creates an inactive store over backend.
func New(backend service.Backend, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		confirmer: denyAll{},
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(n Notice) {
			s.logger.Warn(n.Title, "kind", n.Kind, "msg", n.String())
		})
	}
	return s
}

// Activate opens the live subscription. It returns once the subscription
// is established; the first snapshot may arrive later (see WaitReady).
// A store holds at most one subscription.
func (s *Store) Activate(ctx context.Context) error {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return ErrAlreadyActive
	}
	s.active = true
	s.gen++
	gen := s.gen
	s.loading = true
	s.err = nil
	s.ready = make(chan struct{})
	s.readyFired = false
	s.mu.Unlock()

	s.logger.Debug("subscribing to tasks")
	sub, err := s.backend.Watch(ctx, func(snap service.Snapshot) {
		s.apply(gen, snap)
	})
	if err != nil {
		s.mu.Lock()
		if s.gen == gen {
			s.active = false
			s.loading = false
			s.err = err
			s.fireReadyLocked()
		}
		state := s.stateLocked()
		s.mu.Unlock()

		s.logger.Error("subscribe failed", "err", err)
		s.notifier.Notify(connectionNotice(err))
		s.changed(state)
		return err
	}

	s.mu.Lock()
	if s.gen != gen {
		// Deactivated while Watch was running.
		s.mu.Unlock()
		sub.Stop()
		return nil
	}
	s.sub = sub
	s.mu.Unlock()
	return nil
}

// Deactivate releases the subscription. It is safe to call on an inactive
// store. No snapshot is applied after Deactivate returns.
func (s *Store) Deactivate() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.gen++
	sub := s.sub
	s.sub = nil
	s.loading = false
	s.fireReadyLocked()
	s.mu.Unlock()

	if sub != nil {
		s.logger.Debug("unsubscribing from tasks")
		sub.Stop()
	}
}

// Active reports whether the store holds a subscription.
func (s *Store) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// WaitReady blocks until the current activation has received its first
// snapshot or failed. It returns the subscription error, if any.
func (s *Store) WaitReady(ctx context.Context) error {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready == nil {
		return ErrNotActive
	}

	select {
	case <-ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

// Tasks returns a copy of the current snapshot, newest first.
func (s *Store) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Lookup finds a task in the current snapshot.
func (s *Store) Lookup(id string) (service.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(id)
}

// Create validates and writes a new task. The list is not touched; the new
// task appears with the next snapshot.
func (s *Store) Create(ctx context.Context, title, description string, priority service.Priority) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return s.rejectInput(ErrTitleRequired)
	}
	priority, err := checkPriority(priority)
	if err != nil {
		return s.rejectInput(err)
	}

	task := service.NewTask{
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    priority,
	}
	s.logger.Debug("creating task", "title", task.Title, "priority", task.Priority)
	id, err := s.backend.CreateTask(ctx, task)
	if err != nil {
		return s.writeFailed("create", "", "could not add the task", err)
	}
	s.logger.Debug("task created", "id", id)
	return nil
}

// Update replaces the four mutable fields of task id.
func (s *Store) Update(ctx context.Context, id string, fields service.TaskFields) error {
	fields.Title = strings.TrimSpace(fields.Title)
	if fields.Title == "" {
		return s.rejectInput(ErrTitleRequired)
	}
	priority, err := checkPriority(fields.Priority)
	if err != nil {
		return s.rejectInput(err)
	}
	fields.Priority = priority
	fields.Description = strings.TrimSpace(fields.Description)

	s.logger.Debug("updating task", "id", id, "title", fields.Title, "completed", fields.Completed, "priority", fields.Priority)
	if err := s.backend.UpdateTask(ctx, id, fields); err != nil {
		return s.writeFailed("update", id, "could not update the task", err)
	}
	return nil
}

// ToggleCompletion writes the negation of the task's completion flag as
// seen in the current snapshot.
func (s *Store) ToggleCompletion(ctx context.Context, id string) error {
	task, ok := s.Lookup(id)
	if !ok {
		s.logger.Warn("task not in local snapshot", "id", id)
		s.notifier.Notify(Notice{
			Kind:    NoticeNotFound,
			Title:   "Error",
			Message: "could not find the task to update, try reloading",
			Err:     ErrTaskNotFound,
		})
		return ErrTaskNotFound
	}

	completed := !task.Completed
	s.logger.Debug("toggling task", "id", id, "completed", completed)
	if err := s.backend.SetCompleted(ctx, id, completed); err != nil {
		return s.writeFailed("toggle", id, "could not change the task status", err)
	}
	return nil
}

// Delete asks for confirmation and removes task id. A declined prompt
// returns ErrCancelled and writes nothing.
func (s *Store) Delete(ctx context.Context, id string) error {
	p := Prompt{
		Title:   "Confirm deletion",
		Message: "Delete this task permanently?",
		Confirm: "Delete",
	}
	if task, ok := s.Lookup(id); ok {
		p.Message = "Delete \"" + task.Title + "\" permanently?"
	}

	ok, err := s.confirmer.Confirm(ctx, p)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debug("delete cancelled", "id", id)
		return ErrCancelled
	}

	s.logger.Debug("deleting task", "id", id)
	if err := s.backend.DeleteTask(ctx, id); err != nil {
		return s.writeFailed("delete", id, "could not delete the task", err)
	}
	return nil
}

func (s *Store) apply(gen uint64, snap service.Snapshot) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if snap.Err != nil {
		s.err = snap.Err
	} else {
		s.tasks = cloneTasks(snap.Tasks)
		s.err = nil
	}
	s.loading = false
	s.fireReadyLocked()
	state := s.stateLocked()
	s.mu.Unlock()

	if snap.Err != nil {
		s.logger.Error("task subscription failed", "err", snap.Err)
		s.notifier.Notify(connectionNotice(snap.Err))
	} else {
		s.logger.Debug("tasks snapshot", "count", len(state.Tasks))
	}
	s.changed(state)
}

func (s *Store) changed(state State) {
	if s.onChange != nil {
		s.onChange(state)
	}
}

func (s *Store) fireReadyLocked() {
	if s.ready != nil && !s.readyFired {
		close(s.ready)
		s.readyFired = true
	}
}

func (s *Store) stateLocked() State {
	return State{
		Tasks:   cloneTasks(s.tasks),
		Loading: s.loading,
		Err:     s.err,
	}
}

func (s *Store) lookupLocked(id string) (service.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

func (s *Store) rejectInput(err error) error {
	s.notifier.Notify(validationNotice(err))
	return err
}

func (s *Store) writeFailed(op, id, msg string, err error) error {
	s.logger.Error("write failed", "op", op, "id", id, "err", err)
	werr := &WriteError{Op: op, ID: id, Err: err}
	s.notifier.Notify(Notice{Kind: NoticeWriteFailed, Title: "Error", Message: msg, Err: err})
	return werr
}

func checkPriority(p service.Priority) (service.Priority, error) {
	p = p.OrDefault()
	if !p.Valid() {
		return service.ParsePriority(string(p))
	}
	return p, nil
}

func connectionNotice(err error) Notice {
	return Notice{
		Kind:    NoticeConnection,
		Title:   "Connection error",
		Message: "could not load tasks, check your connection and configuration",
		Err:     err,
	}
}

func cloneTasks(tasks []service.Task) []service.Task {
	if tasks == nil {
		return nil
	}
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out
}
