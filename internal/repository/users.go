package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinescore/cinescore/internal/domain"
)

// UsersRepository provides lookups for token-issuance accounts.
type UsersRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `
    id,
    email,
    password_hash,
    role,
    created_at
`

// GetByEmail fetches a user by email, case-insensitively.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE lower(email) = $1
    `
	var user domain.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Create inserts a user row. Used by seeds and tests.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string, role domain.Role) (domain.User, error) {
	query := `
        INSERT INTO users (email, password_hash, role)
        VALUES ($1,$2,$3)
        RETURNING ` + userColumns

	var user domain.User
	err := r.pool.QueryRow(ctx, query, email, passwordHash, string(role)).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}
