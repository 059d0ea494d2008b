package organizations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

// Repository handles organization persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orgColumns = `id, name, owner_id, subscription_plan, max_users, max_storage_gb, created_at, updated_at`

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var o models.Organization
	err := row.Scan(&o.ID, &o.Name, &o.OwnerID, &o.SubscriptionPlan, &o.MaxUsers, &o.MaxStorageGB, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id))
}

// List returns all organizations, newest first (admin-master view).
func (r *Repository) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orgColumns+` FROM organizations ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// CreateParams holds inputs for transactional tenant creation.
type CreateParams struct {
	Name              string
	Plan              models.SubscriptionPlan
	MaxUsers          int
	MaxStorageGB      float64
	OwnerEmail        string
	OwnerName         string
	OwnerPasswordHash string
}

// CreateWithOwner creates an organization together with its owner user and
// login identity in a single transaction: insert the organization without an
// owner, insert the owner user scoped to it, provision the identity, then set
// owner_id. Nothing outside the transaction ever observes an organization
// with a dangling owner reference or an owner who cannot sign in.
func (r *Repository) CreateWithOwner(ctx context.Context, p CreateParams) (*models.Organization, *models.ApplicationUser, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	org, err := scanOrganization(tx.QueryRow(ctx,
		`INSERT INTO organizations (name, subscription_plan, max_users, max_storage_gb)
		 VALUES ($1, $2, $3, $4) RETURNING `+orgColumns,
		p.Name, string(p.Plan), p.MaxUsers, p.MaxStorageGB))
	if err != nil {
		return nil, nil, fmt.Errorf("insert organization: %w", err)
	}

	var owner models.ApplicationUser
	err = tx.QueryRow(ctx,
		`INSERT INTO application_users (email, name, organization_id, is_admin, can_add_people, can_organize_events, can_manage_media, pending)
		 VALUES (lower($1), $2, $3, TRUE, TRUE, TRUE, TRUE, FALSE)
		 RETURNING id, email, name, organization_id, is_admin, can_add_people, can_organize_events, can_manage_media,
			receive_cancel_event_notification, pending, phone_number, birth_date, country_dial_code, profile_url, created_at, updated_at`,
		p.OwnerEmail, p.OwnerName, org.ID).
		Scan(&owner.ID, &owner.Email, &owner.Name, &owner.OrganizationID, &owner.IsAdmin, &owner.CanAddPeople,
			&owner.CanOrganizeEvents, &owner.CanManageMedia, &owner.ReceiveCancelEventNotification, &owner.Pending,
			&owner.PhoneNumber, &owner.BirthDate, &owner.CountryDialCode, &owner.ProfileURL, &owner.CreatedAt, &owner.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("insert owner: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO identities (email, password_hash, display_name)
		 VALUES (lower($1), $2, $3)
		 ON CONFLICT (email) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			display_name = EXCLUDED.display_name,
			updated_at = NOW()`,
		p.OwnerEmail, p.OwnerPasswordHash, p.OwnerName); err != nil {
		return nil, nil, fmt.Errorf("provision owner identity: %w", err)
	}

	if _, err := tx.Exec(ctx, `UPDATE organizations SET owner_id = $2, updated_at = NOW() WHERE id = $1`, org.ID, owner.ID); err != nil {
		return nil, nil, fmt.Errorf("set owner: %w", err)
	}
	org.OwnerID = &owner.ID

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit: %w", err)
	}
	return org, &owner, nil
}

// UpdateParams holds mutable organization fields.
type UpdateParams struct {
	Name         *string
	Plan         *models.SubscriptionPlan
	MaxUsers     *int
	MaxStorageGB *float64
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (*models.Organization, error) {
	return scanOrganization(r.pool.QueryRow(ctx,
		`UPDATE organizations SET
			name = COALESCE($2, name),
			subscription_plan = COALESCE($3, subscription_plan),
			max_users = COALESCE($4, max_users),
			max_storage_gb = COALESCE($5, max_storage_gb),
			updated_at = NOW()
		 WHERE id = $1 RETURNING `+orgColumns,
		id, p.Name, (*string)(p.Plan), p.MaxUsers, p.MaxStorageGB))
}

// Delete removes an organization and, via cascade, its scoped rows.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Stats returns plan distribution and recent signups for the admin dashboard.
func (r *Repository) Stats(ctx context.Context) (*models.OrganizationStats, error) {
	const q = `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE subscription_plan = 'Free'),
		COUNT(*) FILTER (WHERE subscription_plan = 'Basic'),
		COUNT(*) FILTER (WHERE subscription_plan = 'Premium'),
		COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM organizations`
	var s models.OrganizationStats
	if err := r.pool.QueryRow(ctx, q).Scan(&s.Total, &s.Free, &s.Basic, &s.Premium, &s.Recent); err != nil {
		return nil, err
	}
	return &s, nil
}

// StorageUsedBytes sums file sizes for an organization.
func (r *Repository) StorageUsedBytes(ctx context.Context, orgID int64) (int64, error) {
	var used int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(size), 0) FROM files WHERE organization_id = $1`, orgID).Scan(&used)
	return used, err
}

// UserCount counts application users in an organization.
func (r *Repository) UserCount(ctx context.Context, orgID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM application_users WHERE organization_id = $1`, orgID).Scan(&n)
	return n, err
}
