package sqlite

import (
	"context"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
)

type teamsRepo struct {
	db dbtx
}

const teamColumns = `id, tenant_id, name, color, is_default, created_at, updated_at`

func (r *teamsRepo) CreateTeam(ctx context.Context, t domain.Team) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO teams (id, tenant_id, name, color, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TenantID, t.Name, t.Color, t.IsDefault, now, now,
	)
	return mapConstraint(err)
}

func (r *teamsRepo) GetTeam(ctx context.Context, tenantID, id string) (domain.Team, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	return scanTeam(row)
}

func (r *teamsRepo) ListTeams(ctx context.Context, tenantID string) ([]domain.Team, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+teamColumns+`
		FROM teams
		WHERE tenant_id = ?
		ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *teamsRepo) ClearDefaultTeam(ctx context.Context, tenantID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE teams
		SET is_default = 0, updated_at = ?
		WHERE tenant_id = ? AND is_default = 1`,
		time.Now().UTC(), tenantID,
	)
	return err
}

func (r *teamsRepo) DeleteTeam(ctx context.Context, tenantID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM teams
		WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func scanTeam(row rowScanner) (domain.Team, error) {
	var t domain.Team
	err := row.Scan(
		&t.ID, &t.TenantID, &t.Name, &t.Color, &t.IsDefault,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.Team{}, mapNotFound(err)
	}
	return t, nil
}
