// Package queue implements the named message queues the pipeline engine
// routes into (outgoing, virgin, archive, digest, nntp, ...) on top of
// Redis lists. Each entry is an Envelope: the message, its metadata, and
// bookkeeping fields, serialized as JSON. The storage format is owned
// here; producers and consumers only see message+metadata.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/listflow/internal/domain"
)

const keyPrefix = "listflow:queue:"

// Envelope wraps one queued message with its processing metadata.
type Envelope struct {
	ID         string          `json:"id"`
	Queue      string          `json:"queue"`
	Message    *domain.Message `json:"message"`
	Metadata   domain.Metadata `json:"metadata"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Switchboard places envelopes onto and takes them off named Redis
// queues. It satisfies the pipeline's Queuer contract.
type Switchboard struct {
	client *redis.Client
}

// NewSwitchboard creates a switchboard over the given Redis client.
func NewSwitchboard(client *redis.Client) *Switchboard {
	return &Switchboard{client: client}
}

func queueKey(name string) string { return keyPrefix + name }

// Push places a message with its metadata onto the named queue.
func (s *Switchboard) Push(ctx context.Context, queue string, msg *domain.Message, meta domain.Metadata) error {
	env := Envelope{
		ID:         uuid.New().String(),
		Queue:      queue,
		Message:    msg,
		Metadata:   meta,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}
	if err := s.client.LPush(ctx, queueKey(queue), data).Err(); err != nil {
		return fmt.Errorf("queue: push to %s: %w", queue, err)
	}
	return nil
}

// Pop blocks up to timeout for the next envelope on the named queue.
// Returns nil when the timeout elapses with nothing available.
func (s *Switchboard) Pop(ctx context.Context, queue string, timeout time.Duration) (*Envelope, error) {
	vals, err := s.client.BRPop(ctx, timeout, queueKey(queue)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue: pop from %s: %w", queue, err)
	}
	// BRPop returns [key, value].
	var env Envelope
	if err := json.Unmarshal([]byte(vals[1]), &env); err != nil {
		return nil, fmt.Errorf("queue: decode envelope from %s: %w", queue, err)
	}
	return &env, nil
}

// Len reports how many envelopes are waiting on the named queue.
func (s *Switchboard) Len(ctx context.Context, queue string) (int64, error) {
	n, err := s.client.LLen(ctx, queueKey(queue)).Result()
	if err != nil {
		return 0, fmt.Errorf("queue: len of %s: %w", queue, err)
	}
	return n, nil
}
