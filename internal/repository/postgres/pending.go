// Package postgres implements the repository interfaces against
// PostgreSQL using database/sql with the lib/pq driver. Every operation is
// a single statement, so the atomicity the pending store depends on (the
// token check-then-insert window, expunging confirm) comes from the
// database itself, not from application locking.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignite/listflow/internal/pending"
)

// PendingRepo implements pending.Repository against PostgreSQL.
//
// Schema:
//
//	CREATE TABLE pending_records (
//	    token      TEXT PRIMARY KEY,
//	    pend_type  TEXT NOT NULL,
//	    list_id    TEXT NOT NULL DEFAULT '',
//	    fields     JSONB NOT NULL,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX pending_records_type_idx ON pending_records (pend_type);
//	CREATE INDEX pending_records_expiry_idx ON pending_records (expires_at);
type PendingRepo struct{ db *sql.DB }

// NewPendingRepo creates a Postgres-backed pending repository.
func NewPendingRepo(db *sql.DB) *PendingRepo { return &PendingRepo{db: db} }

// Insert stores a new record. The primary key makes the uniqueness check
// and the insert one atomic step; a conflicting live token surfaces as
// pending.ErrDuplicateToken.
func (r *PendingRepo) Insert(ctx context.Context, rec *pending.Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("marshal pending fields: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pending_records (token, pend_type, list_id, fields, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO NOTHING
	`, rec.Token, rec.Type, rec.ListID, fields, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert pending record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert pending record: %w", err)
	}
	if n == 0 {
		return pending.ErrDuplicateToken
	}
	return nil
}

// Get returns the record for a token, or nil when absent.
func (r *PendingRepo) Get(ctx context.Context, token string) (*pending.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, pend_type, list_id, fields, expires_at
		FROM pending_records WHERE token = $1
	`, token)
	return scanRecord(row)
}

// Take deletes and returns the record for a token in one atomic
// statement; two expunging confirms of the same token cannot both
// succeed.
func (r *PendingRepo) Take(ctx context.Context, token string) (*pending.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		DELETE FROM pending_records WHERE token = $1
		RETURNING token, pend_type, list_id, fields, expires_at
	`, token)
	return scanRecord(row)
}

// DeleteExpired removes every record whose expiry precedes now.
func (r *PendingRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM pending_records WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired pending records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired pending records: %w", err)
	}
	return int(n), nil
}

// Find enumerates live records matching the filter.
func (r *PendingRepo) Find(ctx context.Context, f pending.Filter) ([]*pending.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, pend_type, list_id, fields, expires_at
		FROM pending_records
		WHERE ($1 = '' OR pend_type = $1)
		  AND ($2 = '' OR list_id = $2)
		ORDER BY expires_at
	`, f.Type, f.ListID)
	if err != nil {
		return nil, fmt.Errorf("find pending records: %w", err)
	}
	defer rows.Close()

	var out []*pending.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count reports the number of live records.
func (r *PendingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pending_records`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending records: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*pending.Record, error) {
	var (
		rec    pending.Record
		fields []byte
	)
	err := row.Scan(&rec.Token, &rec.Type, &rec.ListID, &fields, &rec.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan pending record: %w", err)
	}
	if err := json.Unmarshal(fields, &rec.Fields); err != nil {
		return nil, fmt.Errorf("decode pending fields: %w", err)
	}
	return &rec, nil
}
