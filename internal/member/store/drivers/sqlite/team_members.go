package sqlite

import (
	"context"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
)

type teamMembersRepo struct {
	db dbtx
}

func (r *teamMembersRepo) AddTeamMember(ctx context.Context, m domain.TeamMember) error {
	joined := m.JoinedAt
	if joined.IsZero() {
		joined = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_members (team_id, user_id, role, permissions, skills, active, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.TeamID, m.UserID, string(m.Role), joinList(m.Permissions),
		joinList(m.Skills), m.Active, joined.UTC(),
	)
	return mapConstraint(err)
}

func (r *teamMembersRepo) RemoveTeamMember(ctx context.Context, teamID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM team_members
		WHERE team_id = ? AND user_id = ?`,
		teamID, userID,
	)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (r *teamMembersRepo) ListTeamMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT team_id, user_id, role, permissions, skills, active, joined_at
		FROM team_members
		WHERE team_id = ?
		ORDER BY joined_at`,
		teamID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TeamMember
	for rows.Next() {
		var (
			m     domain.TeamMember
			role  string
			perms string
			skill string
		)
		if err := rows.Scan(&m.TeamID, &m.UserID, &role, &perms, &skill, &m.Active, &m.JoinedAt); err != nil {
			return nil, err
		}
		m.Role = domain.TeamRole(role)
		m.Permissions = splitList(perms)
		m.Skills = splitList(skill)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *teamMembersRepo) CountTeamMembers(ctx context.Context, teamID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM team_members WHERE team_id = ?`,
		teamID,
	).Scan(&n)
	return n, err
}
