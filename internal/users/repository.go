package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

// Repository handles application_users persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a users repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, name, organization_id, is_admin, can_add_people, can_organize_events, can_manage_media,
	receive_cancel_event_notification, pending, phone_number, birth_date, country_dial_code, profile_url, created_at, updated_at`

func scanUser(row pgx.Row) (*models.ApplicationUser, error) {
	var u models.ApplicationUser
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.OrganizationID, &u.IsAdmin, &u.CanAddPeople, &u.CanOrganizeEvents,
		&u.CanManageMedia, &u.ReceiveCancelEventNotification, &u.Pending, &u.PhoneNumber, &u.BirthDate,
		&u.CountryDialCode, &u.ProfileURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) queryUsers(ctx context.Context, q string, args ...interface{}) ([]*models.ApplicationUser, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ApplicationUser
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.ApplicationUser, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM application_users WHERE id = $1`, id))
}

// GetByEmail returns a user by email (case-insensitive exact match).
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.ApplicationUser, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM application_users WHERE lower(email) = lower($1)`, email))
}

// List returns all users, newest first (admin-master view).
func (r *Repository) List(ctx context.Context) ([]*models.ApplicationUser, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM application_users ORDER BY created_at DESC`)
}

// ListByOrganization returns an organization's users, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]*models.ApplicationUser, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM application_users WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
}

// ListPending returns users awaiting approval, newest first.
func (r *Repository) ListPending(ctx context.Context) ([]*models.ApplicationUser, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM application_users WHERE pending ORDER BY created_at DESC`)
}

// ListNotifiable returns an organization's approved users who opted into
// event cancellation notifications.
func (r *Repository) ListNotifiable(ctx context.Context, orgID int64) ([]*models.ApplicationUser, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM application_users
		 WHERE organization_id = $1 AND receive_cancel_event_notification AND NOT pending`, orgID)
}

// CreateParams holds inputs for user creation.
type CreateParams struct {
	Email                          string
	Name                           string
	OrganizationID                 int64
	IsAdmin                        bool
	CanAddPeople                   bool
	CanOrganizeEvents              bool
	CanManageMedia                 bool
	ReceiveCancelEventNotification bool
	Pending                        bool
	PhoneNumber                    *string
	CountryDialCode                *string
	ProfileURL                     *string
}

// Create inserts a new application user.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.ApplicationUser, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO application_users
			(email, name, organization_id, is_admin, can_add_people, can_organize_events, can_manage_media,
			 receive_cancel_event_notification, pending, phone_number, country_dial_code, profile_url)
		 VALUES (lower($1), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+userColumns,
		p.Email, p.Name, p.OrganizationID, p.IsAdmin, p.CanAddPeople, p.CanOrganizeEvents, p.CanManageMedia,
		p.ReceiveCancelEventNotification, p.Pending, p.PhoneNumber, p.CountryDialCode, p.ProfileURL))
}

// UpdateParams holds mutable user fields; nil leaves a field unchanged.
type UpdateParams struct {
	Name                           *string
	IsAdmin                        *bool
	CanAddPeople                   *bool
	CanOrganizeEvents              *bool
	CanManageMedia                 *bool
	ReceiveCancelEventNotification *bool
	PhoneNumber                    *string
	CountryDialCode                *string
	ProfileURL                     *string
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (*models.ApplicationUser, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE application_users SET
			name = COALESCE($2, name),
			is_admin = COALESCE($3, is_admin),
			can_add_people = COALESCE($4, can_add_people),
			can_organize_events = COALESCE($5, can_organize_events),
			can_manage_media = COALESCE($6, can_manage_media),
			receive_cancel_event_notification = COALESCE($7, receive_cancel_event_notification),
			phone_number = COALESCE($8, phone_number),
			country_dial_code = COALESCE($9, country_dial_code),
			profile_url = COALESCE($10, profile_url),
			updated_at = NOW()
		 WHERE id = $1 RETURNING `+userColumns,
		id, p.Name, p.IsAdmin, p.CanAddPeople, p.CanOrganizeEvents, p.CanManageMedia,
		p.ReceiveCancelEventNotification, p.PhoneNumber, p.CountryDialCode, p.ProfileURL))
}

// Approve clears the pending flag.
func (r *Repository) Approve(ctx context.Context, id int64) (*models.ApplicationUser, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE application_users SET pending = FALSE, updated_at = NOW() WHERE id = $1 RETURNING `+userColumns, id))
}

// Delete removes a user.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM application_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Stats returns totals for the admin dashboard.
func (r *Repository) Stats(ctx context.Context) (*models.UserStats, error) {
	const q = `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE pending),
		COUNT(*) FILTER (WHERE is_admin),
		COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '30 days')
		FROM application_users`
	var s models.UserStats
	if err := r.pool.QueryRow(ctx, q).Scan(&s.Total, &s.Pending, &s.Admins, &s.Recent); err != nil {
		return nil, err
	}
	return &s, nil
}
