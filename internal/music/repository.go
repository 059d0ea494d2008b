package music

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

const musicColumns = `id, organization_id, title, artist, key, bpm, lyrics, youtube_url, created_at, updated_at`

// Repository persists the organization's song library.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a music repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanMusic(row pgx.Row) (*models.Music, error) {
	var m models.Music
	err := row.Scan(&m.ID, &m.OrganizationID, &m.Title, &m.Artist, &m.Key, &m.BPM,
		&m.Lyrics, &m.YoutubeURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) queryMusic(ctx context.Context, q string, args ...interface{}) ([]*models.Music, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Music
	for rows.Next() {
		m, err := scanMusic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID returns the song by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Music, error) {
	return scanMusic(r.pool.QueryRow(ctx, `SELECT `+musicColumns+` FROM music WHERE id = $1`, id))
}

// ListByOrganization returns the organization's library ordered by title.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]*models.Music, error) {
	return r.queryMusic(ctx,
		`SELECT `+musicColumns+` FROM music WHERE organization_id = $1 ORDER BY title`, orgID)
}

// Search matches title or artist, case-insensitively.
func (r *Repository) Search(ctx context.Context, orgID int64, term string) ([]*models.Music, error) {
	return r.queryMusic(ctx,
		`SELECT `+musicColumns+` FROM music
		 WHERE organization_id = $1 AND (title ILIKE '%' || $2 || '%' OR artist ILIKE '%' || $2 || '%')
		 ORDER BY title`,
		orgID, term)
}

// CreateParams holds inputs for adding a song.
type CreateParams struct {
	OrganizationID int64
	Title          string
	Artist         *string
	Key            *string
	BPM            *int
	Lyrics         *string
	YoutubeURL     *string
}

// Create inserts a new song.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.Music, error) {
	return scanMusic(r.pool.QueryRow(ctx,
		`INSERT INTO music (organization_id, title, artist, key, bpm, lyrics, youtube_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+musicColumns,
		p.OrganizationID, p.Title, p.Artist, p.Key, p.BPM, p.Lyrics, p.YoutubeURL))
}

// UpdateParams holds mutable song fields; nil leaves a field unchanged.
type UpdateParams struct {
	Title      *string
	Artist     *string
	Key        *string
	BPM        *int
	Lyrics     *string
	YoutubeURL *string
}

// Update applies the non-nil fields and returns the updated row.
func (r *Repository) Update(ctx context.Context, id int64, p UpdateParams) (*models.Music, error) {
	return scanMusic(r.pool.QueryRow(ctx,
		`UPDATE music SET
			title = COALESCE($2, title),
			artist = COALESCE($3, artist),
			key = COALESCE($4, key),
			bpm = COALESCE($5, bpm),
			lyrics = COALESCE($6, lyrics),
			youtube_url = COALESCE($7, youtube_url),
			updated_at = NOW()
		 WHERE id = $1 RETURNING `+musicColumns,
		id, p.Title, p.Artist, p.Key, p.BPM, p.Lyrics, p.YoutubeURL))
}

// Delete removes a song.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM music WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
