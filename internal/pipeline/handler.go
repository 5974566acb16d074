package pipeline

import (
	"context"

	"github.com/ignite/listflow/internal/domain"
)

// Handler is one processing step. Implementations mutate msg and meta in
// place and signal control flow through the returned Outcome. A non-nil
// error is a genuine fault, not a disposition; the engine propagates it
// unchanged.
//
// Idempotence is a per-handler contract: handlers that decorate or fan
// copies out to side queues must not re-apply themselves to messages
// already routed there (conventionally tracked with metadata flags).
type Handler interface {
	Name() string
	Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc struct {
	HandlerName string
	Fn          func(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error)
}

func (h HandlerFunc) Name() string { return h.HandlerName }

func (h HandlerFunc) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	return h.Fn(ctx, list, msg, meta)
}

// Queuer places a message with its metadata onto a named destination
// queue. The queue's storage format is the collaborator's concern.
type Queuer interface {
	Push(ctx context.Context, queue string, msg *domain.Message, meta domain.Metadata) error
}

// Named destination queues used by the engine and the built-in handlers.
const (
	QueueIncoming = "in"
	QueueOutgoing = "out"
	QueueVirgin   = "virgin"
	QueueArchive  = "archive"
	QueueDigest   = "digest"
	QueueNews     = "nntp"
	QueueShunt    = "shunt"
)
