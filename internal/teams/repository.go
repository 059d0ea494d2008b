package teams

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejaunida/backend/internal/models"
)

// Repository persists ministry teams, their positions and member assignments.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a teams repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const teamColumns = `id, organization_id, name, description, created_at, updated_at`

func scanTeam(row pgx.Row) (*models.OrganizationTeam, error) {
	var t models.OrganizationTeam
	err := row.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTeam returns the team by id.
func (r *Repository) GetTeam(ctx context.Context, id int64) (*models.OrganizationTeam, error) {
	return scanTeam(r.pool.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM organization_teams WHERE id = $1`, id))
}

// ListTeams returns the organization's teams by name.
func (r *Repository) ListTeams(ctx context.Context, orgID int64) ([]*models.OrganizationTeam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+teamColumns+` FROM organization_teams WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.OrganizationTeam
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTeam inserts a new team.
func (r *Repository) CreateTeam(ctx context.Context, orgID int64, name string, description *string) (*models.OrganizationTeam, error) {
	return scanTeam(r.pool.QueryRow(ctx,
		`INSERT INTO organization_teams (organization_id, name, description)
		 VALUES ($1, $2, $3) RETURNING `+teamColumns,
		orgID, name, description))
}

// UpdateTeam applies the non-nil fields and returns the updated row.
func (r *Repository) UpdateTeam(ctx context.Context, id int64, name, description *string) (*models.OrganizationTeam, error) {
	return scanTeam(r.pool.QueryRow(ctx,
		`UPDATE organization_teams SET
			name = COALESCE($2, name),
			description = COALESCE($3, description),
			updated_at = NOW()
		 WHERE id = $1 RETURNING `+teamColumns,
		id, name, description))
}

// DeleteTeam removes the team and cascades to positions and assignments.
func (r *Repository) DeleteTeam(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organization_teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListPositions returns the team's positions by name.
func (r *Repository) ListPositions(ctx context.Context, teamID int64) ([]*models.TeamPosition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, organization_team_id, name, created_at
		 FROM team_positions WHERE organization_team_id = $1 ORDER BY name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TeamPosition
	for rows.Next() {
		var p models.TeamPosition
		if err := rows.Scan(&p.ID, &p.OrganizationTeamID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// CreatePosition adds a position to the team.
func (r *Repository) CreatePosition(ctx context.Context, teamID int64, name string) (*models.TeamPosition, error) {
	var p models.TeamPosition
	err := r.pool.QueryRow(ctx,
		`INSERT INTO team_positions (organization_team_id, name)
		 VALUES ($1, $2) RETURNING id, organization_team_id, name, created_at`,
		teamID, name,
	).Scan(&p.ID, &p.OrganizationTeamID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePosition removes a position from the team.
func (r *Repository) DeletePosition(ctx context.Context, teamID, positionID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM team_positions WHERE id = $1 AND organization_team_id = $2`, positionID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AssignUser places a user in one of the team's positions. Positions from
// other teams yield pgx.ErrNoRows; the unique constraint makes repeat
// assignments fail rather than duplicate.
func (r *Repository) AssignUser(ctx context.Context, userID, teamID, positionID int64) (*models.TeamPositionAssignment, error) {
	var a models.TeamPositionAssignment
	err := r.pool.QueryRow(ctx,
		`INSERT INTO organization_team_positions (application_user_id, team_position_id)
		 SELECT $1, tp.id FROM team_positions tp
		 WHERE tp.id = $2 AND tp.organization_team_id = $3
		 RETURNING id, application_user_id, team_position_id, created_at`,
		userID, positionID, teamID,
	).Scan(&a.ID, &a.ApplicationUserID, &a.TeamPositionID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UnassignUser removes an assignment belonging to the team.
func (r *Repository) UnassignUser(ctx context.Context, teamID, assignmentID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM organization_team_positions otp
		 USING team_positions tp
		 WHERE otp.id = $1 AND tp.id = otp.team_position_id AND tp.organization_team_id = $2`,
		assignmentID, teamID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListMembers returns the team's assignments joined with user and position details.
func (r *Repository) ListMembers(ctx context.Context, teamID int64) ([]*models.TeamMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT otp.id, u.id, u.name, u.email, tp.id, tp.name
		 FROM organization_team_positions otp
		 JOIN team_positions tp ON tp.id = otp.team_position_id
		 JOIN application_users u ON u.id = otp.application_user_id
		 WHERE tp.organization_team_id = $1
		 ORDER BY tp.name, u.name`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TeamMember
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.AssignmentID, &m.UserID, &m.UserName, &m.UserEmail, &m.PositionID, &m.PositionName); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// ListUserPositions returns everything a user is assigned to across teams.
func (r *Repository) ListUserPositions(ctx context.Context, userID int64) ([]*models.TeamPosition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT tp.id, tp.organization_team_id, tp.name, tp.created_at
		 FROM organization_team_positions otp
		 JOIN team_positions tp ON tp.id = otp.team_position_id
		 WHERE otp.application_user_id = $1
		 ORDER BY tp.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.TeamPosition
	for rows.Next() {
		var p models.TeamPosition
		if err := rows.Scan(&p.ID, &p.OrganizationTeamID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
