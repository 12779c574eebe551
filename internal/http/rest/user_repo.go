package rest

import (
	"context"
	"errors"

	"github.com/bwise1/complaint_portal/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, display_name, avatar_url, password_hash, auth_provider, role, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarURL, &u.PasswordHash,
		&u.AuthProvider, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

func (repo *Repo) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.Role == "" {
		u.Role = model.RoleStudent
	}
	query := `
        INSERT INTO users (email, display_name, avatar_url, password_hash, auth_provider, role)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + userColumns

	created, err := scanUser(repo.DB.QueryRow(ctx, query,
		u.Email, u.DisplayName, u.AvatarURL, u.PasswordHash, u.AuthProvider, u.Role))

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return model.User{}, ErrEmailTaken
	}
	return created, err
}

func (repo *Repo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return scanUser(repo.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (repo *Repo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return scanUser(repo.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (repo *Repo) SetUserRole(ctx context.Context, email string, role model.Role) error {
	cmd, err := repo.DB.Exec(ctx,
		`UPDATE users SET role = $1, updated_at = NOW() WHERE email = $2`, string(role), email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
