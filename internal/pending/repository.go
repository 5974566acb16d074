package pending

import (
	"context"
	"time"
)

// Reserved field keys. "type" tags the record's consumer; "list_id" binds a
// record to its owning mailing list so Find can enumerate per list.
const (
	FieldType   = "type"
	FieldListID = "list_id"
)

// Record is the stored form of a pending action. Field values are already
// passed through the tagged-union codec; Type and ListID are lifted out of
// the field map so repositories can filter without decoding.
type Record struct {
	Token     string
	Type      string
	ListID    string
	Fields    map[string]string
	ExpiresAt time.Time
}

// Filter narrows a Find enumeration. Zero values match everything.
type Filter struct {
	Type   string
	ListID string
}

// Repository persists pending records. Insert must be atomic with respect
// to the token uniqueness check (ErrDuplicateToken on collision), and Take
// must be atomic so two expunging confirms of one token cannot both
// succeed.
type Repository interface {
	// Insert stores a new record, failing with ErrDuplicateToken if a
	// live record already holds the token.
	Insert(ctx context.Context, rec *Record) error
	// Get returns the record for a token, or nil when absent.
	Get(ctx context.Context, token string) (*Record, error)
	// Take deletes and returns the record for a token, or nil when
	// absent. Lookup and delete are one atomic step.
	Take(ctx context.Context, token string) (*Record, error)
	// DeleteExpired removes every record whose expiry precedes now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
	// Find enumerates live records matching the filter.
	Find(ctx context.Context, f Filter) ([]*Record, error)
	// Count reports the number of live records.
	Count(ctx context.Context) (int, error)
}
