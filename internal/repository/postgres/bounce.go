package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/listflow/internal/domain"
)

// BounceRepo implements bounce.Repository against PostgreSQL.
//
// Schema:
//
//	CREATE TABLE bounce_info (
//	    list_id        TEXT NOT NULL,
//	    member         TEXT NOT NULL,
//	    score          DOUBLE PRECISION NOT NULL,
//	    last_bounce    TIMESTAMPTZ NOT NULL,
//	    notices_left   INTEGER NOT NULL,
//	    last_notice    TIMESTAMPTZ,
//	    reenable_token TEXT NOT NULL,
//	    PRIMARY KEY (list_id, member)
//	);
type BounceRepo struct{ db *sql.DB }

// NewBounceRepo creates a Postgres-backed bounce info repository.
func NewBounceRepo(db *sql.DB) *BounceRepo { return &BounceRepo{db: db} }

// Get returns the live BounceInfo for a member, nil when none exists.
func (r *BounceRepo) Get(ctx context.Context, listID, member string) (*domain.BounceInfo, error) {
	var info domain.BounceInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT list_id, member, score, last_bounce, notices_left, last_notice, reenable_token
		FROM bounce_info WHERE list_id = $1 AND member = $2
	`, listID, member).Scan(
		&info.ListID, &info.Member, &info.Score, &info.LastBounce,
		&info.NoticesLeft, &info.LastNotice, &info.ReenableToken,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bounce info: %w", err)
	}
	return &info, nil
}

// Put creates or replaces the member's BounceInfo.
func (r *BounceRepo) Put(ctx context.Context, info *domain.BounceInfo) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bounce_info (list_id, member, score, last_bounce, notices_left, last_notice, reenable_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (list_id, member) DO UPDATE SET
			score = $3, last_bounce = $4, notices_left = $5,
			last_notice = $6, reenable_token = $7
	`, info.ListID, info.Member, info.Score, info.LastBounce,
		info.NoticesLeft, info.LastNotice, info.ReenableToken)
	if err != nil {
		return fmt.Errorf("put bounce info: %w", err)
	}
	return nil
}

// Delete clears the member's BounceInfo; deleting an absent record is not
// an error.
func (r *BounceRepo) Delete(ctx context.Context, listID, member string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM bounce_info WHERE list_id = $1 AND member = $2`,
		listID, member)
	if err != nil {
		return fmt.Errorf("delete bounce info: %w", err)
	}
	return nil
}
