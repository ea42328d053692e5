package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/internal/member/store"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, tenant_id, inviter_id, email, role, token, status,
	custom_message, team_ids, permissions, expires_at, accepted_at, created_at, updated_at`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invitations (id, tenant_id, inviter_id, email, role, token, status,
			custom_message, team_ids, permissions, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TenantID, inv.InviterID, inv.Email, string(inv.Role), inv.Token,
		string(domain.InvitationPending), inv.CustomMessage, joinList(inv.TeamIDs),
		joinList(inv.Permissions), inv.ExpiresAt.UTC(), now, now,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitation(ctx context.Context, tenantID, id string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetPendingInvitationByEmail(ctx context.Context, tenantID, email string) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE tenant_id = ? AND email = ? AND status = 'pending'`,
		tenantID, email,
	)
	return scanInvitation(row)
}

func (r *invitationsRepo) GetPendingInvitationByToken(ctx context.Context, token string, now time.Time) (domain.Invitation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE token = ? AND status = 'pending' AND expires_at > ?`,
		token, now.UTC(),
	)
	return scanInvitation(row)
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, tenantID string) ([]domain.Invitation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE tenant_id = ?
		ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) ExtendInvitation(ctx context.Context, tenantID, id string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET expires_at = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ? AND status = 'pending'`,
		expiresAt.UTC(), time.Now().UTC(), tenantID, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invitationsRepo) CancelInvitation(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'cancelled', updated_at = ?
		WHERE tenant_id = ? AND id = ? AND status = 'pending'`,
		time.Now().UTC(), tenantID, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invitationsRepo) AcceptInvitation(ctx context.Context, id string, acceptedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'accepted', accepted_at = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		acceptedAt.UTC(), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *invitationsRepo) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invitations
		SET status = 'expired', updated_at = ?
		WHERE status = 'pending' AND expires_at < ?`,
		now.UTC(), now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// requireRowAffected converts a zero-row conditional update into
// ErrNotFound; the caller lost the race or referenced a record not in the
// expected state.
func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		role       string
		status     string
		teamIDs    string
		perms      string
		acceptedAt sql.NullTime
	)
	err := row.Scan(
		&inv.ID, &inv.TenantID, &inv.InviterID, &inv.Email, &role, &inv.Token,
		&status, &inv.CustomMessage, &teamIDs, &perms, &inv.ExpiresAt,
		&acceptedAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}

	inv.Role = domain.Role(role)
	inv.Status = domain.InvitationStatus(status)
	inv.TeamIDs = splitList(teamIDs)
	inv.Permissions = splitList(perms)
	inv.AcceptedAt = mapNullTimePtr(acceptedAt)
	return inv, nil
}
