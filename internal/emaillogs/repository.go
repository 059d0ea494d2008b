package emaillogs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

const logColumns = `id, organization_id, recipient, subject, kind, status, error, created_at`

// Repository persists email delivery attempts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLog(row pgx.Row) (*models.EmailLog, error) {
	var l models.EmailLog
	err := row.Scan(&l.ID, &l.OrganizationID, &l.Recipient, &l.Subject, &l.Kind,
		&l.Status, &l.Error, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Record inserts a queued log entry and returns its id.
func (r *Repository) Record(ctx context.Context, orgID *int64, recipient, subject, kind string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO email_logs (organization_id, recipient, subject, kind, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		orgID, recipient, subject, kind, models.EmailStatusQueued).Scan(&id)
	return id, err
}

// MarkSent moves the entry to sent.
func (r *Repository) MarkSent(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2 WHERE id = $1`, id, models.EmailStatusSent)
	return err
}

// MarkFailed moves the entry to failed with the delivery error.
func (r *Repository) MarkFailed(ctx context.Context, id int64, sendErr string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE email_logs SET status = $2, error = $3 WHERE id = $1`,
		id, models.EmailStatusFailed, sendErr)
	return err
}

// List returns recent entries, newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string, limit int) ([]*models.EmailLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT ` + logColumns + ` FROM email_logs`
	args := []interface{}{limit}
	if status != "" {
		q += ` WHERE status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EmailLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
