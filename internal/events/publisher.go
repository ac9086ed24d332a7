package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Change types
const (
	ChangeReordered = "organization.reordered"
	ChangeCreated   = "organization.created"
	ChangeRenamed   = "organization.renamed"
	ChangeTrashed   = "organization.trashed"
	ChangeRestored  = "organization.restored"
)

// Change describes a committed mutation of the organization tree. Subscribers
// (other dashboard instances, caches) use it as a signal to re-fetch.
type Change struct {
	Type    string
	Actor   string
	Folders int
	Agents  int
	At      time.Time
}

// Publisher announces organization changes
type Publisher interface {
	Publish(ctx context.Context, change Change) error
	Close() error
}

type redisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

// NewRedisPublisher publishes changes to a Redis stream with XADD, trimming
// the stream to roughly maxLen entries.
func NewRedisPublisher(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisPublisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

func (p *redisPublisher) Publish(ctx context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: Fields(change),
	}).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}

	p.logger.DebugContext(ctx, "published organization change",
		"type", change.Type,
		"folders", change.Folders,
		"agents", change.Agents,
	)
	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

// Fields renders a change as stream entry values.
func Fields(change Change) map[string]any {
	fields := map[string]any{
		"type":    change.Type,
		"folders": change.Folders,
		"agents":  change.Agents,
		"at":      change.At.Format(time.RFC3339Nano),
	}
	if change.Actor != "" {
		fields["actor"] = change.Actor
	}
	return fields
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every change
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Change) error { return nil }
func (nopPublisher) Close() error                          { return nil }

// Connect parses redisURL, verifies the server answers and returns a stream
// publisher. An empty URL yields a no-op publisher.
func Connect(ctx context.Context, redisURL, stream string, logger *slog.Logger) (Publisher, error) {
	if redisURL == "" {
		return NewNopPublisher(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisPublisher(client, stream, 10000, logger), nil
}
