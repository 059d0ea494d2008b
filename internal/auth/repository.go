package auth

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

// Repository handles identity persistence (the auth sub-service's own table).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns an identity by email (case-insensitive).
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	const q = `SELECT id, email, password_hash, display_name, avatar_url, created_at, updated_at
		FROM identities WHERE lower(email) = lower($1)`
	var i models.Identity
	err := r.pool.QueryRow(ctx, q, email).Scan(&i.ID, &i.Email, &i.PasswordHash, &i.DisplayName, &i.AvatarURL, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new identity. passwordHash may be empty for OAuth-only identities.
func (r *Repository) Create(ctx context.Context, email, passwordHash, displayName string, avatarURL *string) (*models.Identity, error) {
	const q = `INSERT INTO identities (email, password_hash, display_name, avatar_url)
		VALUES (lower($1), NULLIF($2,''), $3, $4)
		RETURNING id, email, password_hash, display_name, avatar_url, created_at, updated_at`
	var i models.Identity
	err := r.pool.QueryRow(ctx, q, email, passwordHash, displayName, avatarURL).
		Scan(&i.ID, &i.Email, &i.PasswordHash, &i.DisplayName, &i.AvatarURL, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Provision creates an identity seeded with a password hash, used when a
// member is invited. An existing identity keeps its own password; only the
// display name is refreshed.
func (r *Repository) Provision(ctx context.Context, email, passwordHash, displayName string) (*models.Identity, error) {
	const q = `INSERT INTO identities (email, password_hash, display_name)
		VALUES (lower($1), $2, $3)
		ON CONFLICT (email) DO UPDATE SET
			password_hash = COALESCE(identities.password_hash, EXCLUDED.password_hash),
			display_name = EXCLUDED.display_name,
			updated_at = NOW()
		RETURNING id, email, password_hash, display_name, avatar_url, created_at, updated_at`
	var i models.Identity
	err := r.pool.QueryRow(ctx, q, email, passwordHash, displayName).
		Scan(&i.ID, &i.Email, &i.PasswordHash, &i.DisplayName, &i.AvatarURL, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// UpsertOAuth creates or refreshes an identity from an OAuth profile. The
// password hash is left untouched so a linked password login keeps working.
func (r *Repository) UpsertOAuth(ctx context.Context, email, displayName string, avatarURL *string) (*models.Identity, error) {
	const q = `INSERT INTO identities (email, display_name, avatar_url)
		VALUES (lower($1), $2, $3)
		ON CONFLICT (email) DO UPDATE SET display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url, updated_at = NOW()
		RETURNING id, email, password_hash, display_name, avatar_url, created_at, updated_at`
	var i models.Identity
	err := r.pool.QueryRow(ctx, q, email, displayName, avatarURL).
		Scan(&i.ID, &i.Email, &i.PasswordHash, &i.DisplayName, &i.AvatarURL, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// UpdatePassword sets a new password hash for the identity.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE identities SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, id, passwordHash)
	return err
}
