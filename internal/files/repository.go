package files

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

const fileColumns = `id, organization_id, name, type, size, s3_key, url, uploaded_by, created_at, updated_at`

// Repository persists tenant file metadata; the bytes live in S3.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a files repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.OrganizationID, &f.Name, &f.Type, &f.Size, &f.S3Key,
		&f.URL, &f.UploadedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetByID returns the file record by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	return scanFile(r.pool.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
}

// ListByOrganization returns the organization's files, newest first.
func (r *Repository) ListByOrganization(ctx context.Context, orgID int64) ([]*models.File, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fileColumns+` FROM files WHERE organization_id = $1 ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// CreateParams holds inputs for recording an uploaded file.
type CreateParams struct {
	OrganizationID int64
	Name           string
	Type           string
	Size           int64
	S3Key          string
	URL            *string
	UploadedBy     int64
}

// Create inserts a file record.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*models.File, error) {
	return scanFile(r.pool.QueryRow(ctx,
		`INSERT INTO files (organization_id, name, type, size, s3_key, url, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+fileColumns,
		p.OrganizationID, p.Name, p.Type, p.Size, p.S3Key, p.URL, p.UploadedBy))
}

// Delete removes a file record.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
