// Package firestoredb implements service.Backend on Cloud Firestore.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/charmbracelet/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"livetask/internal/config"
	"livetask/internal/service"
)

// Document field names.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCompleted   = "completed"
	fieldPriority    = "priority"
	fieldCreatedAt   = "createdAt"
)

// EmulatorHostEnv points the client at a local emulator when set.
const EmulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

// taskDoc is the stored shape of a task.
type taskDoc struct {
	Title       string    `firestore:"title"`
	Description string    `firestore:"description"`
	Completed   bool      `firestore:"completed"`
	Priority    string    `firestore:"priority"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
}

// Client implements service.Backend using Cloud Firestore.
type Client struct {
	fs      *firestore.Client
	tasks   *firestore.CollectionRef
	timeout time.Duration
	logger  *log.Logger
}

// New creates a Firestore client.
// Credentials come from, in order: the emulator (no auth), the configured
// service-account file, or oauth_client.json + token.json from login.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case os.Getenv(EmulatorHostEnv) != "":
		logger.Debug("using firestore emulator", "host", os.Getenv(EmulatorHostEnv))
	case cfg.Firestore.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsFile))
	default:
		ts, err := TokenSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithTokenSource(ts))
	}

	fs, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return NewWithClient(fs, cfg.Collection, cfg.Timeout, logger), nil
}

// NewWithClient wraps an existing Firestore client (for testing).
func NewWithClient(fs *firestore.Client, collection string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		fs:      fs,
		tasks:   fs.Collection(collection),
		timeout: timeout,
		logger:  logger,
	}
}

// Watch implements service.Backend.
func (c *Client) Watch(ctx context.Context, fn func(service.Snapshot)) (service.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		cancel: cancel,
		it:     c.tasks.OrderBy(fieldCreatedAt, firestore.Desc).Snapshots(ctx),
		done:   make(chan struct{}),
	}
	go sub.run(ctx, c.logger, fn)
	return sub, nil
}

// CreateTask implements service.Backend.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ref, _, err := c.tasks.Add(ctx, taskDoc{
		Title:       task.Title,
		Description: task.Description,
		Completed:   false,
		Priority:    string(task.Priority.OrDefault()),
	})
	if err != nil {
		return "", wrapError(err)
	}
	return ref.ID, nil
}

// UpdateTask implements service.Backend.
func (c *Client) UpdateTask(ctx context.Context, id string, fields service.TaskFields) error {
	return c.update(ctx, id, []firestore.Update{
		{Path: fieldTitle, Value: fields.Title},
		{Path: fieldDescription, Value: fields.Description},
		{Path: fieldCompleted, Value: fields.Completed},
		{Path: fieldPriority, Value: string(fields.Priority.OrDefault())},
	})
}

// SetCompleted implements service.Backend.
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) error {
	return c.update(ctx, id, []firestore.Update{
		{Path: fieldCompleted, Value: completed},
	})
}

// DeleteTask implements service.Backend.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.tasks.Doc(id).Delete(ctx); err != nil {
		return wrapError(err)
	}
	return nil
}

// Close implements service.Backend.
func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) update(ctx context.Context, id string, updates []firestore.Update) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Update fails with NotFound if the document is gone.
	if _, err := c.tasks.Doc(id).Update(ctx, updates); err != nil {
		return wrapError(err)
	}
	return nil
}

type subscription struct {
	cancel context.CancelFunc
	it     *firestore.QuerySnapshotIterator
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) run(ctx context.Context, logger *log.Logger, fn func(service.Snapshot)) {
	defer close(s.done)
	for {
		snap, err := s.it.Next()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
				return
			}
			fn(service.Snapshot{Err: wrapError(err)})
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fn(service.Snapshot{Err: wrapError(err)})
			return
		}

		tasks := make([]service.Task, 0, len(docs))
		for _, doc := range docs {
			var d taskDoc
			if err := doc.DataTo(&d); err != nil {
				logger.Warn("skipping malformed task document", "id", doc.Ref.ID, "err", err)
				continue
			}
			tasks = append(tasks, d.toTask(doc.Ref.ID))
		}
		fn(service.Snapshot{Tasks: tasks})
	}
}

// Stop implements service.Subscription.
// The iterator must not be stopped while Next is running, so the context
// is cancelled first and the goroutine drained.
func (s *subscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		s.it.Stop()
	})
}

func (d taskDoc) toTask(id string) service.Task {
	priority, err := service.ParsePriority(d.Priority)
	if err != nil {
		priority = service.DefaultPriority
	}
	return service.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    priority,
		CreatedAt:   d.CreatedAt,
	}
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return fmt.Errorf("request timed out")
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w (run: livetask login): %v", service.ErrUnauthenticated, err)
	case codes.NotFound:
		return service.ErrNotFound
	case codes.Unavailable:
		return fmt.Errorf("firestore unavailable: %w", err)
	}
	return err
}
