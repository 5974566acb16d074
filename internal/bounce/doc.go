// Package bounce implements the per-subscriber delivery-failure state
// machine. Bounces accumulate a weighted score per (list, member); at most
// one bounce is scored per member per calendar day, stale history is
// discarded, and crossing the list's threshold disables delivery and
// starts a warning countdown that ends in removal unless the member
// redeems the re-enable token minted on their first bounce.
//
// The tracker performs no internal locking: callers are expected to hold
// the per-list exclusion scope (see pkg/distlock) around every mutation of
// the same member's state.
package bounce
