// Package pending implements the pending-action store: a durable map from
// an opaque, expiring token to a typed key/value record. External subsystems
// mint records by type ("re-enable", "subscription-confirm", ...) and later
// redeem them exactly once via Confirm with expunge.
//
// Tokens are 40 hex characters derived from a cryptographically strong
// random source. Issuance retries a bounded number of times on collision
// and fails with ErrTokenExhausted when every attempt collides; collisions
// are detected atomically by the backing repository, not by application
// locking.
package pending
