package teams

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/internal/users"
	"github.com/igrejaunida/backend/pkg/response"
)

// TeamRequest is the body for creating or updating a team.
type TeamRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// UpdateTeamRequest is the body for PATCH /teams/:id.
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// PositionRequest is the body for POST /teams/:id/positions.
type PositionRequest struct {
	Name string `json:"name" binding:"required"`
}

// AssignRequest is the body for POST /teams/:id/positions/:positionID/members.
type AssignRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// store is the repository surface the handler depends on.
type store interface {
	GetTeam(ctx context.Context, id int64) (*models.OrganizationTeam, error)
	ListTeams(ctx context.Context, orgID int64) ([]*models.OrganizationTeam, error)
	CreateTeam(ctx context.Context, orgID int64, name string, description *string) (*models.OrganizationTeam, error)
	UpdateTeam(ctx context.Context, id int64, name, description *string) (*models.OrganizationTeam, error)
	DeleteTeam(ctx context.Context, id int64) error
	ListPositions(ctx context.Context, teamID int64) ([]*models.TeamPosition, error)
	CreatePosition(ctx context.Context, teamID int64, name string) (*models.TeamPosition, error)
	DeletePosition(ctx context.Context, teamID, positionID int64) error
	AssignUser(ctx context.Context, userID, teamID, positionID int64) (*models.TeamPositionAssignment, error)
	UnassignUser(ctx context.Context, teamID, assignmentID int64) error
	ListMembers(ctx context.Context, teamID int64) ([]*models.TeamMember, error)
	ListUserPositions(ctx context.Context, userID int64) ([]*models.TeamPosition, error)
}

// memberDirectory resolves users for assignment checks.
type memberDirectory interface {
	GetByID(ctx context.Context, id int64) (*models.ApplicationUser, error)
}

// Handler handles ministry team endpoints.
type Handler struct {
	repo   store
	users  memberDirectory
	logger *zap.Logger
}

// NewHandler creates a teams handler.
func NewHandler(repo *Repository, users *users.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, logger: logger}
}

// List handles GET /teams.
func (h *Handler) List(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	list, err := h.repo.ListTeams(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to list teams")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /teams/:id with positions and members.
func (h *Handler) GetByID(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	positions, err := h.repo.ListPositions(c.Request.Context(), team.ID)
	if err != nil {
		response.Internal(c, "failed to list positions")
		return
	}
	members, err := h.repo.ListMembers(c.Request.Context(), team.ID)
	if err != nil {
		response.Internal(c, "failed to list members")
		return
	}
	response.OK(c, gin.H{"team": team, "positions": positions, "members": members})
}

// Create handles POST /teams.
func (h *Handler) Create(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	team, err := h.repo.CreateTeam(c.Request.Context(), org.ID, req.Name, req.Description)
	if err != nil {
		h.logger.Error("create team", zap.Error(err))
		response.Internal(c, "failed to create team")
		return
	}
	response.Created(c, team)
}

// Update handles PATCH /teams/:id.
func (h *Handler) Update(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	var req UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.UpdateTeam(c.Request.Context(), team.ID, req.Name, req.Description)
	if err != nil {
		response.Internal(c, "failed to update team")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /teams/:id.
func (h *Handler) Delete(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	if err := h.repo.DeleteTeam(c.Request.Context(), team.ID); err != nil {
		response.Internal(c, "failed to delete team")
		return
	}
	response.NoContent(c)
}

// AddPosition handles POST /teams/:id/positions.
func (h *Handler) AddPosition(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	position, err := h.repo.CreatePosition(c.Request.Context(), team.ID, req.Name)
	if err != nil {
		response.Internal(c, "failed to create position")
		return
	}
	response.Created(c, position)
}

// DeletePosition handles DELETE /teams/:id/positions/:positionID.
func (h *Handler) DeletePosition(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	positionID, err := strconv.ParseInt(c.Param("positionID"), 10, 64)
	if err != nil || positionID <= 0 {
		response.BadRequest(c, "invalid position id")
		return
	}
	if err := h.repo.DeletePosition(c.Request.Context(), team.ID, positionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "position not found")
			return
		}
		response.Internal(c, "failed to delete position")
		return
	}
	response.NoContent(c)
}

// Assign handles POST /teams/:id/positions/:positionID/members. The target
// user must belong to the same organization as the team.
func (h *Handler) Assign(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	positionID, err := strconv.ParseInt(c.Param("positionID"), 10, 64)
	if err != nil || positionID <= 0 {
		response.BadRequest(c, "invalid position id")
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), req.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to get user")
		return
	}
	if user.OrganizationID != team.OrganizationID {
		response.Forbidden(c, "user belongs to another organization")
		return
	}

	assignment, err := h.repo.AssignUser(c.Request.Context(), user.ID, team.ID, positionID)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "position not found")
		return
	}
	if err != nil {
		response.Conflict(c, "failed to assign user (already assigned?)")
		return
	}
	response.Created(c, assignment)
}

// Unassign handles DELETE /teams/:id/members/:assignmentID. Assignments of
// other teams are not visible here, so they answer 404.
func (h *Handler) Unassign(c *gin.Context) {
	team, ok := h.scopedTeam(c)
	if !ok {
		return
	}
	assignmentID, err := strconv.ParseInt(c.Param("assignmentID"), 10, 64)
	if err != nil || assignmentID <= 0 {
		response.BadRequest(c, "invalid assignment id")
		return
	}
	if err := h.repo.UnassignUser(c.Request.Context(), team.ID, assignmentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "assignment not found")
			return
		}
		response.Internal(c, "failed to remove assignment")
		return
	}
	response.NoContent(c)
}

// UserPositions handles GET /users/:id/positions: everything the member is
// assigned to across the organization's teams.
func (h *Handler) UserPositions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid user id")
		return
	}
	user, err := h.users.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to get user")
		return
	}
	if !auth.IsSuperAdminContext(c) {
		org := auth.CurrentOrganization(c)
		if org == nil || user.OrganizationID != org.ID {
			response.Forbidden(c, "user belongs to another organization")
			return
		}
	}
	positions, err := h.repo.ListUserPositions(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to list positions")
		return
	}
	response.OK(c, positions)
}

func (h *Handler) scopedTeam(c *gin.Context) (*models.OrganizationTeam, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid team id")
		return nil, false
	}
	team, err := h.repo.GetTeam(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "team not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to get team")
		return nil, false
	}
	if !auth.IsSuperAdminContext(c) {
		org := auth.CurrentOrganization(c)
		if org == nil || team.OrganizationID != org.ID {
			response.Forbidden(c, "team belongs to another organization")
			return nil, false
		}
	}
	return team, true
}
