package bounce

import (
	"context"

	"github.com/ignite/listflow/internal/domain"
	"github.com/ignite/listflow/internal/pipeline"
)

// Metadata keys the bounce-detection stage consumes. An upstream DSN
// parser (external collaborator) fills these in before the message enters
// the bounce pipeline.
const (
	// MetaBounceAddresses is the list of member addresses the delivery
	// failure report names.
	MetaBounceAddresses = "bounce_addresses"
	// MetaBounceWeight optionally overrides the default score weight of
	// 1.0 (probes and warnings conventionally score 0.5).
	MetaBounceWeight = "bounce_weight"
)

// DetectBounces is the pipeline stage that feeds the tracker. It scores
// one bounce for every recognized member address and then discards the
// failure report itself; a report naming no member addresses is discarded
// with its own audit reason.
type DetectBounces struct {
	Tracker *Tracker
}

// Name implements pipeline.Handler.
func (DetectBounces) Name() string { return "detect-bounces" }

// Process implements pipeline.Handler.
func (h DetectBounces) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (pipeline.Outcome, error) {
	addrs := bounceAddresses(meta)
	if len(addrs) == 0 {
		return pipeline.Discard("no bouncing member addresses recognized"), nil
	}
	weight := 1.0
	if w, ok := meta[MetaBounceWeight].(float64); ok && w > 0 {
		weight = w
	}
	for _, member := range addrs {
		if err := h.Tracker.RegisterBounce(ctx, list, member, msg, weight); err != nil {
			return pipeline.Outcome{}, err
		}
	}
	return pipeline.Discard("bounce disposition complete"), nil
}

func bounceAddresses(meta domain.Metadata) []string {
	var out []string
	switch v := meta[MetaBounceAddresses].(type) {
	case []string:
		out = append(out, v...)
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
