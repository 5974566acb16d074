package pending

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/listflow/internal/pkg/logger"
)

// DefaultLifetime applies when Add is called with a zero lifetime.
const DefaultLifetime = 3 * 24 * time.Hour

// DefaultTokenAttempts bounds the mint-retry loop.
const DefaultTokenAttempts = 3

// Config tunes the pending service.
type Config struct {
	// DefaultLifetime applies to records added with a zero lifetime.
	DefaultLifetime time.Duration
	// TokenAttempts is how many collision retries Add makes before
	// giving up with ErrTokenExhausted.
	TokenAttempts int
}

// Service implements the pending-action store on top of a Repository.
type Service struct {
	repo Repository
	cfg  Config
	log  *logger.Logger
	now  func() time.Time
}

// NewService creates a pending service backed by the given repository.
func NewService(repo Repository, cfg Config, log *logger.Logger) *Service {
	if cfg.DefaultLifetime <= 0 {
		cfg.DefaultLifetime = DefaultLifetime
	}
	if cfg.TokenAttempts <= 0 {
		cfg.TokenAttempts = DefaultTokenAttempts
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{repo: repo, cfg: cfg, log: log, now: time.Now}
}

// newToken returns 40 hex characters of cryptographically strong
// randomness. The token format is an opaque contract: any unique URL-safe
// string satisfies consumers.
func newToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("pending: read random: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Add stores fields under a freshly minted token and returns the token.
// fields must carry a string "type"; a string "list_id" is lifted out for
// filtering when present. Values may be string, []byte, or [][2]string.
// A zero lifetime means the configured default.
func (s *Service) Add(ctx context.Context, fields map[string]any, lifetime time.Duration) (string, error) {
	pendType, ok := fields[FieldType].(string)
	if !ok || pendType == "" {
		return "", ErrMissingType
	}
	if lifetime <= 0 {
		lifetime = s.cfg.DefaultLifetime
	}

	rec := &Record{
		Type:      pendType,
		Fields:    make(map[string]string, len(fields)),
		ExpiresAt: s.now().Add(lifetime),
	}
	if listID, ok := fields[FieldListID].(string); ok {
		rec.ListID = listID
	}
	for key, value := range fields {
		if key == FieldType {
			continue
		}
		encoded, err := encodeValue(value)
		if err != nil {
			return "", err
		}
		rec.Fields[key] = encoded
	}

	for attempt := 0; attempt < s.cfg.TokenAttempts; attempt++ {
		token, err := newToken()
		if err != nil {
			return "", err
		}
		rec.Token = token
		err = s.repo.Insert(ctx, rec)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, ErrDuplicateToken) {
			return "", fmt.Errorf("pending: insert: %w", err)
		}
		s.log.Warn("pending token collision, retrying",
			"attempt", attempt+1, "type", pendType)
	}
	return "", fmt.Errorf("%w after %d attempts", ErrTokenExhausted, s.cfg.TokenAttempts)
}

// Confirm looks up a token and reconstructs its field mapping. When expunge
// is true the record is deleted in the same step, so a second Confirm on
// the same token returns nil. Unknown, expired-and-evicted, and
// already-consumed tokens are indistinguishable: all return (nil, nil).
func (s *Service) Confirm(ctx context.Context, token string, expunge bool) (map[string]any, error) {
	var (
		rec *Record
		err error
	)
	if expunge {
		rec, err = s.repo.Take(ctx, token)
	} else {
		rec, err = s.repo.Get(ctx, token)
	}
	if err != nil {
		return nil, fmt.Errorf("pending: confirm: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	return decodeRecord(rec)
}

// Evict deletes every record whose expiry has passed. Intended to run on a
// periodic schedule, never from the hot path.
func (s *Service) Evict(ctx context.Context) error {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return fmt.Errorf("pending: evict: %w", err)
	}
	if n > 0 {
		s.log.Info("evicted expired pending records", "count", n)
	}
	return nil
}

// Found is one Find result: a live token plus its decoded fields.
type Found struct {
	Token  string
	Fields map[string]any
}

// Find enumerates live records without consuming them, optionally filtered
// by pend type or owning list.
func (s *Service) Find(ctx context.Context, f Filter) ([]Found, error) {
	recs, err := s.repo.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("pending: find: %w", err)
	}
	out := make([]Found, 0, len(recs))
	for _, rec := range recs {
		fields, err := decodeRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, Found{Token: rec.Token, Fields: fields})
	}
	return out, nil
}

// Count reports the number of live records.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func decodeRecord(rec *Record) (map[string]any, error) {
	fields := make(map[string]any, len(rec.Fields)+1)
	fields[FieldType] = rec.Type
	for key, raw := range rec.Fields {
		value, err := decodeValue(raw)
		if err != nil {
			return nil, err
		}
		fields[key] = value
	}
	return fields, nil
}
