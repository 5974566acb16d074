package domain

import (
	"fmt"
	"time"
)

// BouncePolicy holds the per-list knobs of the bounce state machine.
type BouncePolicy struct {
	// Processing toggles automatic bounce scoring for the list.
	Processing bool `json:"processing" db:"bounce_processing"`
	// ScoreThreshold is the cumulative score at which a member's delivery
	// is disabled.
	ScoreThreshold float64 `json:"score_threshold" db:"bounce_score_threshold"`
	// StaleAfter is how old bounce history may grow before it is discarded
	// rather than accumulated.
	StaleAfter time.Duration `json:"stale_after" db:"bounce_stale_after_days"`
	// DisabledWarnings is how many "your delivery is disabled" warnings a
	// member receives before being removed.
	DisabledWarnings int `json:"disabled_warnings" db:"bounce_disabled_warnings"`
	// WarningInterval is the minimum spacing between successive warnings.
	WarningInterval time.Duration `json:"warning_interval" db:"bounce_warning_days"`
}

// List represents a mailing list.
type List struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Hostname    string `json:"hostname" db:"hostname"`
	Description string `json:"description" db:"description"`

	// Admins are the owner/moderator addresses that receive administrative
	// traffic for the list.
	Admins []string `json:"admins" db:"-"`

	// Footer is the Liquid template appended to outbound postings.
	Footer string `json:"footer" db:"footer"`

	Digestable      bool   `json:"digestable" db:"digestable"`
	GatewayToNews   bool   `json:"gateway_to_news" db:"gateway_to_news"`
	LinkedNewsgroup string `json:"linked_newsgroup" db:"linked_newsgroup"`

	Bounce BouncePolicy `json:"bounce"`
}

// PostingAddress is the address subscribers post to.
func (l *List) PostingAddress() string {
	return fmt.Sprintf("%s@%s", l.Name, l.Hostname)
}

// OwnerAddress is the administrative contact for the list.
func (l *List) OwnerAddress() string {
	return fmt.Sprintf("%s-owner@%s", l.Name, l.Hostname)
}

// RequestAddress receives confirmation replies and command mail.
func (l *List) RequestAddress() string {
	return fmt.Sprintf("%s-request@%s", l.Name, l.Hostname)
}

// ListID is the RFC 2919 style identifier, e.g. "<test.example.com>".
func (l *List) ListID() string {
	return fmt.Sprintf("<%s.%s>", l.Name, l.Hostname)
}
