package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/ignite/listflow/internal/domain"
)

// ListRepo loads mailing list definitions for the queue runners.
//
// Schema:
//
//	CREATE TABLE lists (
//	    id               TEXT PRIMARY KEY,
//	    name             TEXT NOT NULL,
//	    hostname         TEXT NOT NULL,
//	    description      TEXT NOT NULL DEFAULT '',
//	    admins           TEXT[] NOT NULL DEFAULT '{}',
//	    footer           TEXT NOT NULL DEFAULT '',
//	    digestable       BOOLEAN NOT NULL DEFAULT TRUE,
//	    gateway_to_news  BOOLEAN NOT NULL DEFAULT FALSE,
//	    linked_newsgroup TEXT NOT NULL DEFAULT '',
//	    bounce_processing        BOOLEAN NOT NULL DEFAULT TRUE,
//	    bounce_score_threshold   DOUBLE PRECISION NOT NULL DEFAULT 5.0,
//	    bounce_stale_after_days  INTEGER NOT NULL DEFAULT 7,
//	    bounce_disabled_warnings INTEGER NOT NULL DEFAULT 3,
//	    bounce_warning_days      INTEGER NOT NULL DEFAULT 7,
//	    UNIQUE (name, hostname)
//	);
type ListRepo struct{ db *sql.DB }

// NewListRepo creates a Postgres-backed list repository.
func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{db: db} }

const listColumns = `
	id, name, hostname, description, admins, footer,
	digestable, gateway_to_news, linked_newsgroup,
	bounce_processing, bounce_score_threshold, bounce_stale_after_days,
	bounce_disabled_warnings, bounce_warning_days
`

// Get loads a list by ID, nil when absent.
func (r *ListRepo) Get(ctx context.Context, id string) (*domain.List, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE id = $1`, id)
	return scanList(row)
}

// GetByPostingAddress resolves the list a message was addressed to.
func (r *ListRepo) GetByPostingAddress(ctx context.Context, name, hostname string) (*domain.List, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+listColumns+` FROM lists WHERE name = $1 AND hostname = $2`,
		name, hostname)
	return scanList(row)
}

// All enumerates every list, for the recurring sweeps.
func (r *ListRepo) All(ctx context.Context) ([]*domain.List, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+listColumns+` FROM lists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var out []*domain.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanList(row rowScanner) (*domain.List, error) {
	var (
		l           domain.List
		staleDays   int
		warningDays int
	)
	err := row.Scan(
		&l.ID, &l.Name, &l.Hostname, &l.Description,
		pq.Array(&l.Admins), &l.Footer,
		&l.Digestable, &l.GatewayToNews, &l.LinkedNewsgroup,
		&l.Bounce.Processing, &l.Bounce.ScoreThreshold, &staleDays,
		&l.Bounce.DisabledWarnings, &warningDays,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan list: %w", err)
	}
	l.Bounce.StaleAfter = time.Duration(staleDays) * 24 * time.Hour
	l.Bounce.WarningInterval = time.Duration(warningDays) * 24 * time.Hour
	return &l, nil
}
