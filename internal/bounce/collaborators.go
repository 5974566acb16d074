package bounce

import (
	"context"
	"time"

	"github.com/ignite/listflow/internal/domain"
)

// Repository persists BounceInfo records, at most one per (list, member).
type Repository interface {
	// Get returns the live BounceInfo, or nil when the member has no
	// tracked bounce history.
	Get(ctx context.Context, listID, member string) (*domain.BounceInfo, error)
	// Put creates or replaces the member's BounceInfo.
	Put(ctx context.Context, info *domain.BounceInfo) error
	// Delete clears the member's BounceInfo. Deleting an absent record is
	// not an error.
	Delete(ctx context.Context, listID, member string) error
}

// Membership is the external collaborator that owns member records. The
// tracker only ever moves delivery status to disabled-by-bounce or back to
// enabled.
type Membership interface {
	IsMember(ctx context.Context, listID, member string) (bool, error)
	DeliveryStatus(ctx context.Context, listID, member string) (domain.DeliveryStatus, error)
	SetDeliveryStatus(ctx context.Context, listID, member string, status domain.DeliveryStatus) error
	// Remove unsubscribes the member. The collaborator sends the removal
	// acknowledgment to the member and, when adminNotify is set, a
	// notification to the list owner.
	Remove(ctx context.Context, listID, member, reason string, userAck, adminNotify bool) error
	Password(ctx context.Context, listID, member string) (string, error)
}

// Pender mints and consumes pending-action tokens; implemented by
// pending.Service.
type Pender interface {
	Add(ctx context.Context, fields map[string]any, lifetime time.Duration) (string, error)
	Confirm(ctx context.Context, token string, expunge bool) (map[string]any, error)
}

// Noticer composes and sends the notices the state machine produces. Sends
// may block or fail; the tracker orders them after its own state mutations
// so a failed send never enables further mutation.
type Noticer interface {
	// SendDisabledWarning sends the "your delivery is disabled" warning
	// carrying the confirmation URL for the re-enable token.
	SendDisabledWarning(ctx context.Context, list *domain.List, member string, noticesLeft int, token, password string) error
	// SendAdminBounceNotice tells the list owner a member was disabled,
	// attaching the bouncing message.
	SendAdminBounceNotice(ctx context.Context, list *domain.List, member string, original *domain.Message) error
	// SendSenderBounce returns an undeliverable message to its sender
	// with the failure detail attached.
	SendSenderBounce(ctx context.Context, list *domain.List, original *domain.Message, detail string) error
}
