package pipeline

import (
	"context"

	"github.com/ignite/listflow/internal/domain"
)

// Pipeline names registered by DefaultRegistry.
const (
	PostingPipeline = "default-posting-pipeline"
	OwnerPipeline   = "default-owner-pipeline"
)

// Metadata flags the built-in handlers use to keep fan-out and decoration
// idempotent. A copy routed to a side queue carries the flag so the
// handler never re-applies on redelivery.
const (
	metaDecorated = "decorated"
	metaArchived  = "archived"
	metaDigested  = "digested"
	metaGatewayed = "gatewayed"
	metaNoArchive = "noarchive"
)

// FooterRenderer renders the list footer template for decoration.
type FooterRenderer interface {
	RenderFooter(list *domain.List) (string, error)
}

// DefaultRegistry builds the standard posting and owner pipelines over the
// given queue collaborator and footer renderer.
func DefaultRegistry(queues Queuer, footers FooterRenderer) *Registry {
	r := NewRegistry()
	r.Register(NewPipeline(PostingPipeline, "The built-in posting pipeline",
		CookHeaders{},
		ToArchive{Queues: queues},
		ToDigest{Queues: queues},
		ToUsenet{Queues: queues},
		Decorate{Footers: footers},
		ToOutgoing{Queues: queues},
	))
	r.Register(NewPipeline(OwnerPipeline, "The built-in owner pipeline",
		OwnerRecipients{},
		ToOutgoing{Queues: queues},
	))
	return r
}

// CookHeaders adds the RFC 2369 list headers to a posting.
type CookHeaders struct{}

func (CookHeaders) Name() string { return "cook-headers" }

func (CookHeaders) Process(_ context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	msg.Set("List-Id", list.ListID())
	msg.Set("List-Post", "<mailto:"+list.PostingAddress()+">")
	msg.Set("List-Owner", "<mailto:"+list.OwnerAddress()+">")
	if meta.String(domain.MetaListname) == "" {
		meta[domain.MetaListname] = list.PostingAddress()
	}
	return Continue(), nil
}

// Decorate appends the list footer to the message body. VERP deliveries
// and copies already fanned out to side queues are never decorated twice.
type Decorate struct {
	Footers FooterRenderer
}

func (Decorate) Name() string { return "decorate" }

func (d Decorate) Process(_ context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	if meta.Bool(domain.MetaVERP) || meta.Bool(metaDecorated) {
		return Continue(), nil
	}
	if list.Footer == "" || d.Footers == nil {
		return Continue(), nil
	}
	footer, err := d.Footers.RenderFooter(list)
	if err != nil {
		return Outcome{}, err
	}
	if msg.Body != "" && msg.Body[len(msg.Body)-1] != '\n' {
		msg.Body += "\n"
	}
	msg.Body += footer
	meta[metaDecorated] = true
	return Continue(), nil
}

// ToArchive fans an undecorated copy of the message out to the archive
// queue.
type ToArchive struct {
	Queues Queuer
}

func (ToArchive) Name() string { return "to-archive" }

func (h ToArchive) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	if meta.Bool(metaArchived) || meta.Bool(metaNoArchive) {
		return Continue(), nil
	}
	copyMeta := meta.Clone()
	copyMeta[metaArchived] = true
	if err := h.Queues.Push(ctx, QueueArchive, msg.Clone(), copyMeta); err != nil {
		return Outcome{}, err
	}
	meta[metaArchived] = true
	return Continue(), nil
}

// ToDigest fans an undecorated copy out to the digest queue for digestable
// lists.
type ToDigest struct {
	Queues Queuer
}

func (ToDigest) Name() string { return "to-digest" }

func (h ToDigest) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	if !list.Digestable || meta.Bool(metaDigested) {
		return Continue(), nil
	}
	copyMeta := meta.Clone()
	copyMeta[metaDigested] = true
	if err := h.Queues.Push(ctx, QueueDigest, msg.Clone(), copyMeta); err != nil {
		return Outcome{}, err
	}
	meta[metaDigested] = true
	return Continue(), nil
}

// ToUsenet fans a copy out to the news gateway queue for lists linked to a
// newsgroup.
type ToUsenet struct {
	Queues Queuer
}

func (ToUsenet) Name() string { return "to-usenet" }

func (h ToUsenet) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	if !list.GatewayToNews || list.LinkedNewsgroup == "" || meta.Bool(metaGatewayed) {
		return Continue(), nil
	}
	copyMeta := meta.Clone()
	copyMeta[metaGatewayed] = true
	copyMeta["newsgroup"] = list.LinkedNewsgroup
	if err := h.Queues.Push(ctx, QueueNews, msg.Clone(), copyMeta); err != nil {
		return Outcome{}, err
	}
	meta[metaGatewayed] = true
	return Continue(), nil
}

// ToOutgoing places the finished message on the outgoing queue.
type ToOutgoing struct {
	Queues Queuer
}

func (ToOutgoing) Name() string { return "to-outgoing" }

func (h ToOutgoing) Process(ctx context.Context, list *domain.List, msg *domain.Message, meta domain.Metadata) (Outcome, error) {
	if err := h.Queues.Push(ctx, QueueOutgoing, msg, meta); err != nil {
		return Outcome{}, err
	}
	return Continue(), nil
}

// OwnerRecipients computes the recipient set for mail addressed to the
// list administrators.
type OwnerRecipients struct{}

func (OwnerRecipients) Name() string { return "owner-recipients" }

func (OwnerRecipients) Process(_ context.Context, list *domain.List, _ *domain.Message, meta domain.Metadata) (Outcome, error) {
	meta.SetRecipients(list.Admins...)
	return Continue(), nil
}
