package events

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

const eventColumns = `id, organization_id, title, description, location, start_date, end_date, status, created_by, created_at, updated_at`

// Repository persists events, their schedules and their blocks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.OrganizationID, &e.Title, &e.Description, &e.Location,
		&e.StartDate, &e.EndDate, &e.Status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) queryEvents(ctx context.Context, q string, args ...interface{}) ([]*models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetByID returns the event by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// ListByOrganization returns all events of an organization, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]*models.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organization_id = $1 ORDER BY start_date DESC`, orgID)
}

// ListByStatus returns the organization's events in a given status.
func (r *Repository) ListByStatus(ctx context.Context, orgID int64, status models.EventStatus) ([]*models.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organization_id = $1 AND status = $2 ORDER BY start_date DESC`,
		orgID, status)
}

// ListUpcoming returns scheduled events starting after now, soonest first.
func (r *Repository) ListUpcoming(ctx context.Context, orgID int64) ([]*models.Event, error) {
	return r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE organization_id = $1 AND status = $2 AND start_date > NOW()
		 ORDER BY start_date ASC`,
		orgID, models.EventScheduled)
}

// CreateParams holds inputs for event creation.
type CreateParams struct {
	OrganizationID int64
	Title          string
	Description    *string
	Location       *string
	StartDate      time.Time
	EndDate        *time.Time
	Status         models.EventStatus
	CreatedBy      int64
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`INSERT INTO events (organization_id, title, description, location, start_date, end_date, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+eventColumns,
		p.OrganizationID, p.Title, p.Description, p.Location, p.StartDate, p.EndDate, p.Status, p.CreatedBy))
}

// UpdateParams holds mutable event fields; nil leaves a field unchanged.
type UpdateParams struct {
	Title       *string
	Description *string
	Location    *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *models.EventStatus
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`UPDATE events SET
			title = COALESCE($2, title),
			description = COALESCE($3, description),
			location = COALESCE($4, location),
			start_date = COALESCE($5, start_date),
			end_date = COALESCE($6, end_date),
			status = COALESCE($7, status),
			updated_at = NOW()
		 WHERE id = $1 RETURNING `+eventColumns,
		id, p.Title, p.Description, p.Location, p.StartDate, p.EndDate, p.Status))
}

// SetStatus moves the event to the given status.
func (r *Repository) SetStatus(ctx context.Context, id int64, status models.EventStatus) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+eventColumns,
		id, status))
}

// Delete removes the event and cascades to its schedules and blocks.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListSchedules returns the event's agenda in order.
func (r *Repository) ListSchedules(ctx context.Context, eventID int64) ([]*models.EventSchedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, date, description, order_position, created_at
		 FROM event_schedules WHERE event_id = $1 ORDER BY order_position, date`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EventSchedule
	for rows.Next() {
		var s models.EventSchedule
		if err := rows.Scan(&s.ID, &s.EventID, &s.Date, &s.Description, &s.OrderPosition, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// AddSchedule appends an agenda entry to the event.
func (r *Repository) AddSchedule(ctx context.Context, eventID int64, date time.Time, description string, order int) (*models.EventSchedule, error) {
	var s models.EventSchedule
	err := r.pool.QueryRow(ctx,
		`INSERT INTO event_schedules (event_id, date, description, order_position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, event_id, date, description, order_position, created_at`,
		eventID, date, description, order,
	).Scan(&s.ID, &s.EventID, &s.Date, &s.Description, &s.OrderPosition, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSchedule removes one agenda entry.
func (r *Repository) DeleteSchedule(ctx context.Context, eventID, scheduleID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM event_schedules WHERE id = $1 AND event_id = $2`, scheduleID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListBlocks returns the event's blocked periods.
func (r *Repository) ListBlocks(ctx context.Context, eventID int64) ([]*models.EventBlock, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, start_date, end_date, reason, created_at
		 FROM event_blocks WHERE event_id = $1 ORDER BY start_date`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EventBlock
	for rows.Next() {
		var b models.EventBlock
		if err := rows.Scan(&b.ID, &b.EventID, &b.StartDate, &b.EndDate, &b.Reason, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// AddBlock marks a blocked period on the event.
func (r *Repository) AddBlock(ctx context.Context, eventID int64, start, end time.Time, reason *string) (*models.EventBlock, error) {
	var b models.EventBlock
	err := r.pool.QueryRow(ctx,
		`INSERT INTO event_blocks (event_id, start_date, end_date, reason)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, event_id, start_date, end_date, reason, created_at`,
		eventID, start, end, reason,
	).Scan(&b.ID, &b.EventID, &b.StartDate, &b.EndDate, &b.Reason, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBlock removes one blocked period.
func (r *Repository) DeleteBlock(ctx context.Context, eventID, blockID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM event_blocks WHERE id = $1 AND event_id = $2`, blockID, eventID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
