package domain

import "time"

// DeliveryStatus enumerates a member's enabled/disabled state with respect
// to receiving list mail, including the reason for disablement.
type DeliveryStatus string

const (
	DeliveryEnabled  DeliveryStatus = "enabled"
	DeliveryByUser   DeliveryStatus = "disabled_by_user"
	DeliveryByAdmin  DeliveryStatus = "disabled_by_admin"
	DeliveryByBounce DeliveryStatus = "disabled_by_bounce"
	DeliveryUnknown  DeliveryStatus = "unknown"
)

// Member represents a single subscriber of a mailing list.
type Member struct {
	ID           string         `json:"id" db:"id"`
	ListID       string         `json:"list_id" db:"list_id"`
	Address      string         `json:"address" db:"address"`
	Password     string         `json:"-" db:"password"`
	Status       DeliveryStatus `json:"status" db:"status"`
	SubscribedAt time.Time      `json:"subscribed_at" db:"subscribed_at"`
}
