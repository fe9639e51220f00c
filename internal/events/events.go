// Package events publishes application updates so dashboards can refresh
// without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Type string

const (
	ApplicationCreated Type = "application.created"
	InterviewScheduled Type = "interview.scheduled"
	InterviewCancelled Type = "interview.cancelled"
	NeedDeleted        Type = "need.deleted"
)

// DefaultChannel is the Redis channel used when none is configured.
const DefaultChannel = "smartserve:applications"

// Event is the JSON payload published for every change.
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	ApplicationID string    `json:"application_id,omitempty"`
	NeedID        string    `json:"ngo_post_id,omitempty"`
	VolunteerID   string    `json:"volunteer_id,omitempty"`
	Status        string    `json:"interview_status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh ID and the current time.
func New(t Type) Event {
	return Event{ID: uuid.NewString(), Type: t, OccurredAt: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Redis publishes events as JSON on a pub/sub channel.
type Redis struct {
	client  redisClient
	channel string
}

func NewRedis(client *redis.Client, channel string) *Redis {
	return newRedis(client, channel)
}

func newRedis(client redisClient, channel string) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Redis{client: client, channel: channel}
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", e.Type, r.channel, err)
	}
	return nil
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}

// Logged wraps p so publish failures are logged and never returned.
func Logged(p Publisher, logger *zap.Logger) Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &logged{next: p, logger: logger}
}

type logged struct {
	next   Publisher
	logger *zap.Logger
}

func (l *logged) Publish(ctx context.Context, e Event) error {
	if err := l.next.Publish(ctx, e); err != nil {
		l.logger.Warn("event publish failed",
			zap.String("event_type", string(e.Type)),
			zap.String("event_id", e.ID),
			zap.Error(err),
		)
	}
	return nil
}
