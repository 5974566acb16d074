package domain

import "time"

// BounceInfo is the per-(list, member) bounce-tracking record. At most one
// live BounceInfo exists per member per list; absence means the member has
// no tracked bounce history.
type BounceInfo struct {
	ListID string `json:"list_id" db:"list_id"`
	Member string `json:"member" db:"member"`

	// Score is the accumulated weighted count of recent bounces.
	Score float64 `json:"score" db:"score"`
	// LastBounce is the calendar day (UTC) of the last scored bounce.
	LastBounce time.Time `json:"last_bounce" db:"last_bounce"`
	// NoticesLeft counts the disabled-delivery warnings still to send
	// before the member is removed.
	NoticesLeft int `json:"notices_left" db:"notices_left"`
	// LastNotice is when the last warning was sent, nil if none yet.
	LastNotice *time.Time `json:"last_notice" db:"last_notice"`
	// ReenableToken is the pending token that, when confirmed, restores
	// the member's delivery status.
	ReenableToken string `json:"reenable_token" db:"reenable_token"`
}
