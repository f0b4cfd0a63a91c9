// Package mongodb implements service.Backend on MongoDB.
//
// The live query is a change stream on the task collection; each change
// event triggers a sorted re-read so subscribers always receive the full
// result set. Change streams need a replica set or sharded cluster.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"livetask/internal/config"
	"livetask/internal/service"
)

// ConnectTimeout bounds connecting and the initial ping.
const ConnectTimeout = 10 * time.Second

// taskDoc is the stored shape of a task.
type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Completed   bool               `bson:"completed"`
	Priority    string             `bson:"priority"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// Client implements service.Backend using MongoDB.
type Client struct {
	client  *mongo.Client
	tasks   *mongo.Collection
	timeout time.Duration
	logger  *log.Logger
}

// New connects to MongoDB and pings the server.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongo: %w", wrapError(err))
	}
	logger.Debug("connected to mongo", "database", cfg.Mongo.Database, "collection", cfg.Collection)

	return NewWithClient(client, cfg.Mongo.Database, cfg.Collection, cfg.Timeout, logger), nil
}

// NewWithClient wraps an existing connection (for testing).
func NewWithClient(client *mongo.Client, database, collection string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		client:  client,
		tasks:   client.Database(database).Collection(collection),
		timeout: timeout,
		logger:  logger,
	}
}

// Watch implements service.Backend.
// The change stream is opened before the first read so no change between
// the read and the stream start is missed.
func (c *Client) Watch(ctx context.Context, fn func(service.Snapshot)) (service.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.tasks.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change stream: %w", wrapError(err))
	}

	sub := &subscription{
		cancel: cancel,
		stream: stream,
		done:   make(chan struct{}),
	}
	go sub.run(ctx, c, fn)
	return sub, nil
}

// CreateTask implements service.Backend.
// A single upsert sets the fields and lets the server stamp createdAt.
func (c *Client) CreateTask(ctx context.Context, task service.NewTask) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	id := primitive.NewObjectID()
	update := bson.M{
		"$setOnInsert": bson.M{
			"title":       task.Title,
			"description": task.Description,
			"completed":   false,
			"priority":    string(task.Priority.OrDefault()),
		},
		"$currentDate": bson.M{"createdAt": true},
	}
	_, err := c.tasks.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return "", wrapError(err)
	}
	return id.Hex(), nil
}

// UpdateTask implements service.Backend.
func (c *Client) UpdateTask(ctx context.Context, id string, fields service.TaskFields) error {
	return c.set(ctx, id, bson.M{
		"title":       fields.Title,
		"description": fields.Description,
		"completed":   fields.Completed,
		"priority":    string(fields.Priority.OrDefault()),
	})
}

// SetCompleted implements service.Backend.
func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) error {
	return c.set(ctx, id, bson.M{"completed": completed})
}

// DeleteTask implements service.Backend.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not an ID this backend could have issued; nothing to delete.
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.tasks.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return wrapError(err)
	}
	return nil
}

// Close implements service.Backend.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()
	return c.client.Disconnect(ctx)
}

func (c *Client) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return service.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.tasks.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return service.ErrNotFound
	}
	return nil
}

// load reads the whole collection, newest first.
func (c *Client) load(ctx context.Context) ([]service.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := c.tasks.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrapError(err)
	}
	defer cursor.Close(ctx)

	var docs []taskDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapError(err)
	}

	tasks := make([]service.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toTask())
	}
	return tasks, nil
}

type subscription struct {
	cancel context.CancelFunc
	stream *mongo.ChangeStream
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) run(ctx context.Context, c *Client, fn func(service.Snapshot)) {
	defer close(s.done)

	push := func() bool {
		tasks, err := c.load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			fn(service.Snapshot{Err: err})
			return false
		}
		fn(service.Snapshot{Tasks: tasks})
		return true
	}

	if !push() {
		return
	}
	for s.stream.Next(ctx) {
		// Coalesce a burst of events into one re-read.
		for s.stream.RemainingBatchLength() > 0 && s.stream.Next(ctx) {
		}
		c.logger.Debug("change event", "collection", c.tasks.Name())
		if !push() {
			return
		}
	}
	if err := s.stream.Err(); err != nil && ctx.Err() == nil {
		fn(service.Snapshot{Err: wrapError(err)})
	}
}

// Stop implements service.Subscription.
func (s *subscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
		_ = s.stream.Close(context.Background())
	})
}

func (d taskDoc) toTask() service.Task {
	priority, err := service.ParsePriority(d.Priority)
	if err != nil {
		priority = service.DefaultPriority
	}
	return service.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Completed:   d.Completed,
		Priority:    priority,
		CreatedAt:   d.CreatedAt,
	}
}

// wrapError wraps driver errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return service.ErrNotFound
	case mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("request timed out")
	case mongo.IsNetworkError(err):
		return fmt.Errorf("mongo unreachable: %w", err)
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 13, 18: // Unauthorized, AuthenticationFailed
			return fmt.Errorf("%w: %v", service.ErrUnauthenticated, err)
		case 40573: // change streams on a standalone server
			return fmt.Errorf("change streams need a replica set: %w", err)
		}
	}
	return err
}
