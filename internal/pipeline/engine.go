package pipeline

import (
	"context"
	"fmt"

	"github.com/ignite/listflow/internal/domain"
	"github.com/ignite/listflow/internal/pkg/logger"
)

// Engine runs messages through named pipelines. Each message is processed
// synchronously, start to finish; callers are expected to hold the
// per-list exclusion scope before invoking Process.
type Engine struct {
	registry *Registry
	queues   Queuer
	log      *logger.Logger
}

// NewEngine creates an engine over the given registry and queue
// collaborator.
func NewEngine(registry *Registry, queues Queuer, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Default()
	}
	return &Engine{registry: registry, queues: queues, log: log}
}

// Process resolves pipelineName and invokes each handler in declared
// order, passing the same mutable message and metadata forward.
//
// A Discard outcome drops the message with an audit record. A Reject
// outcome drops it, writes an audit record, and re-routes the original,
// unmodified message onto the virgin queue so a rejection notice can reach
// the sender. A handler error aborts processing and propagates: the
// message is never silently lost, it stays in whatever external queue
// delivered it.
func (e *Engine) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata, pipelineName string) error {
	pipe, err := e.registry.Get(pipelineName)
	if err != nil {
		return err
	}

	// Snapshot before any handler runs; the reject path must forward the
	// message exactly as it arrived.
	original := msg.Clone()

	for _, h := range pipe.handlers {
		outcome, err := h.Process(ctx, list, msg, meta)
		if err != nil {
			return fmt.Errorf("pipeline %q handler %q: %w", pipelineName, h.Name(), err)
		}
		switch outcome.Disposition {
		case DispositionContinue:
			continue
		case DispositionDiscard:
			e.log.Info("message discarded",
				"msgid", msg.ID,
				"pipeline", pipelineName,
				"handler", h.Name(),
				"reason", outcome.Reason)
			return nil
		case DispositionReject:
			e.log.Info("message rejected",
				"msgid", msg.ID,
				"pipeline", pipelineName,
				"handler", h.Name(),
				"reason", outcome.Reason)
			rejectMeta := domain.Metadata{
				domain.MetaListname: list.PostingAddress(),
				"rejection_reason":  outcome.Reason,
			}
			if err := e.queues.Push(ctx, QueueVirgin, original, rejectMeta); err != nil {
				return fmt.Errorf("pipeline %q: queue rejection of %q: %w", pipelineName, msg.ID, err)
			}
			return nil
		default:
			return fmt.Errorf("pipeline %q handler %q: unknown disposition %d", pipelineName, h.Name(), outcome.Disposition)
		}
	}
	return nil
}
