package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/listflow/internal/domain"
	"github.com/ignite/listflow/internal/pkg/logger"
)

// MembershipRepo implements bounce.Membership against PostgreSQL. It owns
// the member records only; removal acknowledgments and owner
// notifications are site policy and belong to the deployment's membership
// service, which wraps this repository.
//
// Schema:
//
//	CREATE TABLE list_members (
//	    list_id       TEXT NOT NULL,
//	    address       TEXT NOT NULL,
//	    password      TEXT NOT NULL DEFAULT '',
//	    status        TEXT NOT NULL DEFAULT 'enabled',
//	    subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    PRIMARY KEY (list_id, address)
//	);
type MembershipRepo struct {
	db  *sql.DB
	log *logger.Logger
}

// NewMembershipRepo creates a Postgres-backed membership repository.
func NewMembershipRepo(db *sql.DB, log *logger.Logger) *MembershipRepo {
	if log == nil {
		log = logger.Default()
	}
	return &MembershipRepo{db: db, log: log}
}

// IsMember reports whether the address is currently subscribed.
func (r *MembershipRepo) IsMember(ctx context.Context, listID, member string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM list_members WHERE list_id = $1 AND address = $2)`,
		listID, member,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("membership lookup: %w", err)
	}
	return exists, nil
}

// DeliveryStatus returns the member's delivery status, unknown for
// non-members.
func (r *MembershipRepo) DeliveryStatus(ctx context.Context, listID, member string) (domain.DeliveryStatus, error) {
	var status domain.DeliveryStatus
	err := r.db.QueryRowContext(ctx,
		`SELECT status FROM list_members WHERE list_id = $1 AND address = $2`,
		listID, member,
	).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.DeliveryUnknown, nil
	}
	if err != nil {
		return domain.DeliveryUnknown, fmt.Errorf("delivery status: %w", err)
	}
	return status, nil
}

// SetDeliveryStatus updates the member's delivery status.
func (r *MembershipRepo) SetDeliveryStatus(ctx context.Context, listID, member string, status domain.DeliveryStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE list_members SET status = $3 WHERE list_id = $1 AND address = $2`,
		listID, member, status)
	if err != nil {
		return fmt.Errorf("set delivery status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set delivery status: %s is not a member of %s", member, listID)
	}
	return nil
}

// Remove unsubscribes the member.
func (r *MembershipRepo) Remove(ctx context.Context, listID, member, reason string, userAck, adminNotify bool) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM list_members WHERE list_id = $1 AND address = $2`,
		listID, member)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	r.log.Info("member removed", "list", listID, "member", member,
		"reason", reason, "user_ack", userAck, "admin_notify", adminNotify)
	return nil
}

// Password returns the member's list password for notice substitution.
func (r *MembershipRepo) Password(ctx context.Context, listID, member string) (string, error) {
	var password string
	err := r.db.QueryRowContext(ctx,
		`SELECT password FROM list_members WHERE list_id = $1 AND address = $2`,
		listID, member,
	).Scan(&password)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("member password: %w", err)
	}
	return password, nil
}

// DisabledByBounce lists the members of a list currently disabled by
// bounce, for the recurring notification sweep.
func (r *MembershipRepo) DisabledByBounce(ctx context.Context, listID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT address FROM list_members WHERE list_id = $1 AND status = $2 ORDER BY address`,
		listID, domain.DeliveryByBounce)
	if err != nil {
		return nil, fmt.Errorf("list disabled members: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, addr)
	}
	return out, rows.Err()
}
