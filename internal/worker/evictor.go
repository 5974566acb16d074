package worker

import (
	"context"
	"time"

	"github.com/ignite/listflow/internal/pending"
	"github.com/ignite/listflow/internal/pkg/logger"
)

// Evictor periodically drops expired pending tokens.
type Evictor struct {
	pend     *pending.Service
	interval time.Duration
	log      *logger.Logger
}

// NewEvictor creates a pending-token evictor.
func NewEvictor(pend *pending.Service, interval time.Duration, log *logger.Logger) *Evictor {
	if log == nil {
		log = logger.Default()
	}
	return &Evictor{pend: pend, interval: interval, log: log}
}

// Start begins the eviction loop. It blocks until ctx is cancelled.
func (e *Evictor) Start(ctx context.Context) {
	e.log.Info("pending evictor starting", "interval", e.interval.String())

	// Run once immediately on start
	e.evict(ctx)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("pending evictor stopping")
			return
		case <-ticker.C:
			e.evict(ctx)
		}
	}
}

func (e *Evictor) evict(ctx context.Context) {
	if err := e.pend.Evict(ctx); err != nil {
		e.log.Error("pending eviction failed", "error", err)
	}
}
