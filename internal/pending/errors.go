package pending

import "errors"

var (
	// ErrTokenExhausted is returned by Add when every token attempt
	// collided with a live record. This indicates an entropy or store
	// contention fault and is not recoverable by retrying.
	ErrTokenExhausted = errors.New("pending: could not mint a unique token")

	// ErrDuplicateToken is returned by repositories when an insert hits a
	// live record with the same token. The service retries on it.
	ErrDuplicateToken = errors.New("pending: token already exists")

	// ErrMissingType is returned by Add when the reserved "type" field is
	// absent or not a string.
	ErrMissingType = errors.New(`pending: fields must carry a string "type"`)
)
