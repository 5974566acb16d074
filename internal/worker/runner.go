// Package worker hosts the long-running loops: the pipeline runner that
// drains the incoming queue, the pending-token evictor, and the
// disabled-member warning sweeper. Each worker blocks in Start until its
// context is cancelled.
package worker

import (
	"context"
	"strings"
	"time"

	"github.com/ignite/listflow/internal/domain"
	"github.com/ignite/listflow/internal/pipeline"
	"github.com/ignite/listflow/internal/pkg/distlock"
	"github.com/ignite/listflow/internal/pkg/logger"
	"github.com/ignite/listflow/internal/queue"
)

// ListResolver resolves the list a queued message was addressed to.
type ListResolver interface {
	GetByPostingAddress(ctx context.Context, name, hostname string) (*domain.List, error)
}

// LockFactory builds the per-list processing lock. Two runners holding
// locks for different lists proceed in parallel; the same list is always
// processed by at most one runner.
type LockFactory func(listID string) distlock.DistLock

// Runner drains the incoming queue through the pipeline engine.
type Runner struct {
	queues     *queue.Switchboard
	engine     *pipeline.Engine
	lists      ListResolver
	lockFor    LockFactory
	popTimeout time.Duration
	log        *logger.Logger
}

// NewRunner creates a pipeline runner.
func NewRunner(queues *queue.Switchboard, engine *pipeline.Engine, lists ListResolver, lockFor LockFactory, popTimeout time.Duration, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Default()
	}
	return &Runner{
		queues:     queues,
		engine:     engine,
		lists:      lists,
		lockFor:    lockFor,
		popTimeout: popTimeout,
		log:        log,
	}
}

// Start consumes the incoming queue until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.log.Info("pipeline runner starting", "queue", pipeline.QueueIncoming)
	for {
		if ctx.Err() != nil {
			r.log.Info("pipeline runner stopping")
			return
		}
		env, err := r.queues.Pop(ctx, pipeline.QueueIncoming, r.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			r.log.Error("pop incoming", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if env == nil {
			continue
		}
		r.handle(ctx, env)
	}
}

func (r *Runner) handle(ctx context.Context, env *queue.Envelope) {
	list, err := r.resolveList(ctx, env.Metadata)
	if err != nil {
		r.shunt(ctx, env, "resolve list: "+err.Error())
		return
	}
	if list == nil {
		r.shunt(ctx, env, "no such list: "+env.Metadata.String(domain.MetaListname))
		return
	}

	lock := r.lockFor(list.ID)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		r.shunt(ctx, env, "acquire list lock: "+err.Error())
		return
	}
	if !acquired {
		// Another runner owns the list; requeue and let it catch up.
		if err := r.queues.Push(ctx, pipeline.QueueIncoming, env.Message, env.Metadata); err != nil {
			r.log.Error("requeue busy list", "list", list.ID, "error", err)
		}
		time.Sleep(100 * time.Millisecond)
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			r.log.Error("release list lock", "list", list.ID, "error", err)
		}
	}()

	name := env.Metadata.String(domain.MetaPipeline)
	if name == "" {
		name = pipeline.PostingPipeline
	}
	if err := r.engine.Process(ctx, list, env.Message, env.Metadata, name); err != nil {
		r.shunt(ctx, env, err.Error())
	}
}

func (r *Runner) resolveList(ctx context.Context, meta domain.Metadata) (*domain.List, error) {
	listname := meta.String(domain.MetaListname)
	at := strings.LastIndex(listname, "@")
	if at <= 0 || at == len(listname)-1 {
		return nil, nil
	}
	return r.lists.GetByPostingAddress(ctx, listname[:at], listname[at+1:])
}

// shunt parks a message that could not be processed, preserving it and
// its metadata for operator inspection instead of losing it.
func (r *Runner) shunt(ctx context.Context, env *queue.Envelope, reason string) {
	r.log.Error("shunting message", "msgid", env.Message.ID, "reason", reason)
	meta := env.Metadata.Clone()
	meta["shunt_reason"] = reason
	if err := r.queues.Push(ctx, pipeline.QueueShunt, env.Message, meta); err != nil {
		r.log.Error("shunt push failed", "msgid", env.Message.ID, "error", err)
	}
}
