// Package memory provides in-memory repository implementations. They
// back single-node deployments that do not want a database, and the
// service-level tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ignite/listflow/internal/pending"
)

// PendingRepo implements pending.Repository with a mutex-guarded map.
type PendingRepo struct {
	mu   sync.Mutex
	recs map[string]*pending.Record
}

// NewPendingRepo creates an empty in-memory pending repository.
func NewPendingRepo() *PendingRepo {
	return &PendingRepo{recs: make(map[string]*pending.Record)}
}

// Insert stores a new record, rejecting a token that is already live.
func (r *PendingRepo) Insert(_ context.Context, rec *pending.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.recs[rec.Token]; ok {
		return pending.ErrDuplicateToken
	}
	cp := *rec
	r.recs[rec.Token] = &cp
	return nil
}

// Get returns the record for a token, or nil when absent.
func (r *PendingRepo) Get(_ context.Context, token string) (*pending.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[token]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// Take deletes and returns the record for a token. The single lock hold
// makes it one-shot: a second Take of the same token misses.
func (r *PendingRepo) Take(_ context.Context, token string) (*pending.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[token]
	if !ok {
		return nil, nil
	}
	delete(r.recs, token)
	return rec, nil
}

// DeleteExpired removes every record whose expiry precedes now.
func (r *PendingRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for token, rec := range r.recs {
		if rec.ExpiresAt.Before(now) {
			delete(r.recs, token)
			n++
		}
	}
	return n, nil
}

// Find enumerates live records matching the filter, oldest expiry first.
func (r *PendingRepo) Find(_ context.Context, f pending.Filter) ([]*pending.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*pending.Record
	for _, rec := range r.recs {
		if f.Type != "" && rec.Type != f.Type {
			continue
		}
		if f.ListID != "" && rec.ListID != f.ListID {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out, nil
}

// Count reports the number of live records.
func (r *PendingRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recs), nil
}
