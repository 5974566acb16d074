package worker

import (
	"context"
	"time"

	"github.com/ignite/listflow/internal/bounce"
	"github.com/ignite/listflow/internal/domain"
	"github.com/ignite/listflow/internal/pkg/logger"
)

// ListEnumerator yields every configured list for the sweep.
type ListEnumerator interface {
	All(ctx context.Context) ([]*domain.List, error)
}

// DisabledLister yields the members of a list whose delivery is disabled
// by bounce.
type DisabledLister interface {
	DisabledByBounce(ctx context.Context, listID string) ([]string, error)
}

// Sweeper runs the recurring disabled-member warning schedule across all
// lists, sending the next warning to each member whose interval has
// elapsed and removing members who have exhausted their warnings.
type Sweeper struct {
	lists    ListEnumerator
	disabled DisabledLister
	tracker  *bounce.Tracker
	interval time.Duration
	log      *logger.Logger
}

// NewSweeper creates a disabled-member warning sweeper.
func NewSweeper(lists ListEnumerator, disabled DisabledLister, tracker *bounce.Tracker, interval time.Duration, log *logger.Logger) *Sweeper {
	if log == nil {
		log = logger.Default()
	}
	return &Sweeper{
		lists:    lists,
		disabled: disabled,
		tracker:  tracker,
		interval: interval,
		log:      log,
	}
}

// Start begins the sweep loop. It blocks until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.log.Info("notice sweeper starting", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("notice sweeper stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	lists, err := s.lists.All(ctx)
	if err != nil {
		s.log.Error("sweep: enumerate lists", "error", err)
		return
	}
	for _, list := range lists {
		members, err := s.disabled.DisabledByBounce(ctx, list.ID)
		if err != nil {
			s.log.Error("sweep: list disabled members", "list", list.ID, "error", err)
			continue
		}
		if len(members) == 0 {
			continue
		}
		if err := s.tracker.SweepDisabled(ctx, list, members); err != nil {
			s.log.Error("sweep failed", "list", list.ID, "error", err)
		}
	}
	s.log.Info("sweep cycle completed", "lists", len(lists),
		"elapsed", time.Since(start).Round(time.Millisecond).String())
}
