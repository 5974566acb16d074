package notice

import (
	"context"

	"github.com/ignite/listflow/internal/domain"
)

// Pusher enqueues a composed message; queue.Switchboard satisfies this.
type Pusher interface {
	Push(ctx context.Context, queue string, msg *domain.Message, meta domain.Metadata) error
}

// QueueSender submits notices by enqueueing them as fresh messages, the
// same path freshly-generated list mail takes to the outside world.
type QueueSender struct {
	queues Pusher
	queue  string
	newID  func() string
}

// NewQueueSender creates a sender pushing onto the named queue. newID
// mints Message-ID values for the generated notices.
func NewQueueSender(queues Pusher, queue string, newID func() string) *QueueSender {
	return &QueueSender{queues: queues, queue: queue, newID: newID}
}

// Send builds an RFC 822 style message for the notice and enqueues it.
func (s *QueueSender) Send(ctx context.Context, to, from, subject, body string, attach *domain.Message) error {
	msg := domain.NewMessage(s.newID())
	msg.Set("From", from)
	msg.Set("To", to)
	msg.Set("Subject", subject)
	msg.Body = FlattenAttachment(body, attach)

	meta := domain.Metadata{}
	meta.SetRecipients(to)
	return s.queues.Push(ctx, s.queue, msg, meta)
}
