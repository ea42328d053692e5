package sqlite

import (
	"context"
	"time"

	"github.com/crewdesk/memberd/internal/member/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, tenant_id, email, first_name, last_name, role, status,
	permissions, password_hash, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, tenant_id, email, first_name, last_name, role, status,
			permissions, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.TenantID, u.Email, u.FirstName, u.LastName, string(u.Role),
		string(u.Status), joinList(u.Permissions), u.PasswordHash, now, now,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, tenantID, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE tenant_id = ? AND id = ?`,
		tenantID, id,
	)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, tenantID, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE tenant_id = ? AND email = ?`,
		tenantID, email,
	)
	return scanUser(row)
}

func (r *usersRepo) ListUsers(ctx context.Context, tenantID string) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE tenant_id = ?
		ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u      domain.User
		role   string
		status string
		perms  string
	)
	err := row.Scan(
		&u.ID, &u.TenantID, &u.Email, &u.FirstName, &u.LastName, &role,
		&status, &perms, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.Permissions = splitList(perms)
	return u, nil
}
