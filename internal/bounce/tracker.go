package bounce

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/listflow/internal/domain"
	"github.com/ignite/listflow/internal/pkg/logger"
)

// PendReenable is the pending-record type minted for re-enable tokens.
const PendReenable = "re-enable"

// removeReason is recorded when a chronically bouncing member is removed.
const removeReason = "bouncing address"

// Config supplies site-wide defaults for lists whose bounce policy leaves
// a knob unset.
type Config struct {
	ScoreThreshold   float64
	StaleAfter       time.Duration
	DisabledWarnings int
	WarningInterval  time.Duration
	// TokenLifetime is the lifetime of minted re-enable tokens; zero
	// means the pending store's default.
	TokenLifetime time.Duration
}

// DefaultConfig mirrors the traditional site defaults: disable at a score
// of 5.0, discard bounce history older than a week, send three warnings a
// week apart.
func DefaultConfig() Config {
	return Config{
		ScoreThreshold:   5.0,
		StaleAfter:       7 * 24 * time.Hour,
		DisabledWarnings: 3,
		WarningInterval:  7 * 24 * time.Hour,
	}
}

// Tracker drives the per-(list, member) bounce state machine. It performs
// no internal locking; hold the per-list exclusion scope around calls that
// mutate the same member.
type Tracker struct {
	cfg        Config
	infos      Repository
	membership Membership
	pend       Pender
	notices    Noticer
	log        *logger.Logger
	now        func() time.Time
}

// NewTracker wires the state machine to its collaborators.
func NewTracker(cfg Config, infos Repository, membership Membership, pend Pender, notices Noticer, log *logger.Logger) *Tracker {
	def := DefaultConfig()
	if cfg.ScoreThreshold <= 0 {
		cfg.ScoreThreshold = def.ScoreThreshold
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	if cfg.DisabledWarnings <= 0 {
		cfg.DisabledWarnings = def.DisabledWarnings
	}
	if cfg.WarningInterval <= 0 {
		cfg.WarningInterval = def.WarningInterval
	}
	if log == nil {
		log = logger.Default()
	}
	return &Tracker{
		cfg:        cfg,
		infos:      infos,
		membership: membership,
		pend:       pend,
		notices:    notices,
		log:        log,
		now:        time.Now,
	}
}

// policy resolves the effective bounce policy for a list, falling back to
// the site defaults for unset knobs.
func (t *Tracker) policy(list *domain.List) domain.BouncePolicy {
	p := list.Bounce
	if p.ScoreThreshold <= 0 {
		p.ScoreThreshold = t.cfg.ScoreThreshold
	}
	if p.StaleAfter <= 0 {
		p.StaleAfter = t.cfg.StaleAfter
	}
	if p.DisabledWarnings <= 0 {
		p.DisabledWarnings = t.cfg.DisabledWarnings
	}
	if p.WarningInterval <= 0 {
		p.WarningInterval = t.cfg.WarningInterval
	}
	return p
}

// dateOf truncates a time to its UTC calendar day.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RegisterBounce scores one delivery failure for a member. Lists with
// bounce processing switched off never score. Bounces for non-members
// and for already-disabled members are silent no-ops, and at most one
// bounce is scored per member per calendar day. Crossing the list's
// score threshold disables delivery, sends the first warning, and
// notifies the list owner with the bouncing message attached.
func (t *Tracker) RegisterBounce(ctx context.Context, list *domain.List, member string, msg *domain.Message, weight float64) error {
	if !list.Bounce.Processing {
		t.log.Debug("bounce processing off for list", "list", list.ID)
		return nil
	}

	ok, err := t.membership.IsMember(ctx, list.ID, member)
	if err != nil {
		return fmt.Errorf("bounce: membership lookup: %w", err)
	}
	if !ok {
		// Defensive no-op: a bounce for an address we no longer manage.
		return nil
	}

	pol := t.policy(list)
	today := dateOf(t.now())

	info, err := t.infos.Get(ctx, list.ID, member)
	if err != nil {
		return fmt.Errorf("bounce: load info: %w", err)
	}

	if info == nil {
		// First bounce ever seen from this member: open the record and
		// mint the re-enable token it will be redeemed by.
		token, err := t.pend.Add(ctx, map[string]any{
			"type":    PendReenable,
			"list_id": list.ID,
			"member":  member,
		}, t.cfg.TokenLifetime)
		if err != nil {
			return fmt.Errorf("bounce: mint re-enable token: %w", err)
		}
		info = &domain.BounceInfo{
			ListID:        list.ID,
			Member:        member,
			Score:         weight,
			LastBounce:    today,
			NoticesLeft:   pol.DisabledWarnings,
			ReenableToken: token,
		}
		if err := t.infos.Put(ctx, info); err != nil {
			return fmt.Errorf("bounce: save info: %w", err)
		}
		t.log.Info("first bounce scored", "list", list.ID, "member", member, "score", info.Score)
		return nil
	}

	status, err := t.membership.DeliveryStatus(ctx, list.ID, member)
	if err != nil {
		return fmt.Errorf("bounce: delivery status: %w", err)
	}
	if status != domain.DeliveryEnabled {
		// Residual bounce from a message sent before the member was
		// disabled; already handled.
		t.log.Debug("residual bounce ignored", "list", list.ID, "member", member)
		return nil
	}

	if info.LastBounce.Equal(today) {
		// Already scored a bounce for today.
		t.log.Debug("bounce already scored today", "list", list.ID, "member", member)
		return nil
	}

	// Staleness is day granular: history resets only when strictly more
	// than StaleAfter has passed between the bounce days.
	if info.LastBounce.Add(pol.StaleAfter).Before(today) {
		// History is stale: discard it and start a fresh cycle from this
		// bounce alone. The original re-enable token stays bound.
		info.Score = weight
		info.LastBounce = today
		info.NoticesLeft = 0
		if err := t.infos.Put(ctx, info); err != nil {
			return fmt.Errorf("bounce: save info: %w", err)
		}
		t.log.Info("stale bounce info reset", "list", list.ID, "member", member, "score", info.Score)
		return nil
	}

	info.Score += weight
	info.LastBounce = today
	if err := t.infos.Put(ctx, info); err != nil {
		return fmt.Errorf("bounce: save info: %w", err)
	}
	t.log.Info("bounce scored", "list", list.ID, "member", member, "score", info.Score)

	if info.Score < pol.ScoreThreshold {
		return nil
	}

	// Threshold crossed: disable delivery first, then the trailing
	// notice sends. A failed send must never undo or enable mutation.
	t.log.Info("disabling member on bounce score",
		"list", list.ID, "member", member,
		"score", info.Score, "threshold", pol.ScoreThreshold)
	if err := t.membership.SetDeliveryStatus(ctx, list.ID, member, domain.DeliveryByBounce); err != nil {
		return fmt.Errorf("bounce: disable member: %w", err)
	}
	if err := t.SendNextNotification(ctx, list, member); err != nil {
		return err
	}
	if err := t.notices.SendAdminBounceNotice(ctx, list, member, msg); err != nil {
		return fmt.Errorf("bounce: admin notice: %w", err)
	}
	return nil
}

// SendNextNotification sends the next disabled-delivery warning to a
// member, or removes the member once the warnings are exhausted,
// consuming the re-enable token. Intended to be invoked on a recurring
// schedule for every member currently disabled by bounce, as well as
// immediately upon disablement.
func (t *Tracker) SendNextNotification(ctx context.Context, list *domain.List, member string) error {
	info, err := t.infos.Get(ctx, list.ID, member)
	if err != nil {
		return fmt.Errorf("bounce: load info: %w", err)
	}
	if info == nil {
		return nil
	}

	if info.NoticesLeft <= 0 {
		if err := t.membership.Remove(ctx, list.ID, member, removeReason, true, true); err != nil {
			return fmt.Errorf("bounce: remove member: %w", err)
		}
		// Expunge the re-enable token; the returned fields are thrown
		// away.
		if _, err := t.pend.Confirm(ctx, info.ReenableToken, true); err != nil {
			return fmt.Errorf("bounce: expunge token: %w", err)
		}
		if err := t.infos.Delete(ctx, list.ID, member); err != nil {
			return fmt.Errorf("bounce: clear info: %w", err)
		}
		t.log.Info("member removed after exhausting notices", "list", list.ID, "member", member)
		return nil
	}

	password, err := t.membership.Password(ctx, list.ID, member)
	if err != nil {
		return fmt.Errorf("bounce: member password: %w", err)
	}
	if err := t.notices.SendDisabledWarning(ctx, list, member, info.NoticesLeft, info.ReenableToken, password); err != nil {
		return fmt.Errorf("bounce: warning notice: %w", err)
	}

	now := t.now()
	info.NoticesLeft--
	info.LastNotice = &now
	if err := t.infos.Put(ctx, info); err != nil {
		return fmt.Errorf("bounce: save info: %w", err)
	}
	return nil
}

// SweepDisabled runs the recurring notification schedule for the given
// members of a list (all currently disabled by bounce). A member whose
// last warning is younger than the list's warning interval is skipped.
func (t *Tracker) SweepDisabled(ctx context.Context, list *domain.List, members []string) error {
	pol := t.policy(list)
	for _, member := range members {
		info, err := t.infos.Get(ctx, list.ID, member)
		if err != nil {
			return fmt.Errorf("bounce: load info: %w", err)
		}
		if info == nil {
			continue
		}
		if info.LastNotice != nil && t.now().Sub(*info.LastNotice) < pol.WarningInterval {
			continue
		}
		if err := t.SendNextNotification(ctx, list, member); err != nil {
			return err
		}
	}
	return nil
}

// HandleReenable redeems a re-enable token: the member's delivery status
// returns to enabled and their bounce history is cleared. Returns the
// member address and false when the token is unknown, already consumed,
// expired, or not a re-enable record.
func (t *Tracker) HandleReenable(ctx context.Context, token string) (string, bool, error) {
	fields, err := t.pend.Confirm(ctx, token, true)
	if err != nil {
		return "", false, fmt.Errorf("bounce: confirm token: %w", err)
	}
	if fields == nil {
		return "", false, nil
	}
	pendType, _ := fields["type"].(string)
	listID, _ := fields["list_id"].(string)
	member, _ := fields["member"].(string)
	if pendType != PendReenable || listID == "" || member == "" {
		return "", false, nil
	}

	if err := t.membership.SetDeliveryStatus(ctx, listID, member, domain.DeliveryEnabled); err != nil {
		return "", false, fmt.Errorf("bounce: re-enable member: %w", err)
	}
	if err := t.infos.Delete(ctx, listID, member); err != nil {
		return "", false, fmt.Errorf("bounce: clear info: %w", err)
	}
	t.log.Info("member re-enabled via confirmation", "list", listID, "member", member)
	return member, true, nil
}

// BounceMessage returns a message to its original sender with a notice
// summarizing why it could not be delivered; used for delivery failures
// unrelated to subscriber bounce scoring.
func (t *Tracker) BounceMessage(ctx context.Context, list *domain.List, msg *domain.Message, detail string) error {
	if err := t.notices.SendSenderBounce(ctx, list, msg, detail); err != nil {
		return fmt.Errorf("bounce: sender notice: %w", err)
	}
	return nil
}
