package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/internal/organizations"
	"github.com/igrejaunida/backend/pkg/queue"
	"github.com/igrejaunida/backend/pkg/response"
	"github.com/igrejaunida/backend/pkg/utils"
)

// CreateRequest is the body for POST /users. Created users start pending and
// must be approved before they can act.
type CreateRequest struct {
	Email                          string  `json:"email" binding:"required,email"`
	Name                           string  `json:"name" binding:"required"`
	CanAddPeople                   bool    `json:"can_add_people"`
	CanOrganizeEvents              bool    `json:"can_organize_events"`
	CanManageMedia                 bool    `json:"can_manage_media"`
	ReceiveCancelEventNotification bool    `json:"receive_cancel_event_notification"`
	PhoneNumber                    *string `json:"phone_number"`
	CountryDialCode                *string `json:"country_dial_code"`
}

// UpdateRequest is the body for PATCH /users/:id.
type UpdateRequest struct {
	Name                           *string `json:"name"`
	IsAdmin                        *bool   `json:"is_admin"`
	CanAddPeople                   *bool   `json:"can_add_people"`
	CanOrganizeEvents              *bool   `json:"can_organize_events"`
	CanManageMedia                 *bool   `json:"can_manage_media"`
	ReceiveCancelEventNotification *bool   `json:"receive_cancel_event_notification"`
	PhoneNumber                    *string `json:"phone_number"`
	CountryDialCode                *string `json:"country_dial_code"`
	ProfileURL                     *string `json:"profile_url"`
}

// identityProvisioner seeds a login identity for invited members.
type identityProvisioner interface {
	Provision(ctx context.Context, email, passwordHash, displayName string) (*models.Identity, error)
}

// Handler handles user endpoints for both the tenant and admin-master surfaces.
type Handler struct {
	repo       *Repository
	orgs       *organizations.Repository
	identities identityProvisioner
	queue      *queue.Queue
	logger     *zap.Logger
}

// NewHandler creates a users handler.
func NewHandler(repo *Repository, orgs *organizations.Repository, identities *auth.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, identities: identities, queue: q, logger: logger}
}

// ListMine handles GET /users: users of the caller's organization.
func (h *Handler) ListMine(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	list, err := h.repo.ListByOrganization(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// Create handles POST /users: invite a member into the caller's organization.
// Enforces the organization's max_users cap; the new member is pending until
// approved, and receives an invite email.
func (h *Handler) Create(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	count, err := h.orgs.UserCount(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to check member count")
		return
	}
	if count >= org.MaxUsers {
		response.Conflict(c, fmt.Sprintf("organization member limit reached (%d)", org.MaxUsers))
		return
	}

	user, err := h.repo.Create(c.Request.Context(), CreateParams{
		Email:                          req.Email,
		Name:                           req.Name,
		OrganizationID:                 org.ID,
		CanAddPeople:                   req.CanAddPeople,
		CanOrganizeEvents:              req.CanOrganizeEvents,
		CanManageMedia:                 req.CanManageMedia,
		ReceiveCancelEventNotification: req.ReceiveCancelEventNotification,
		Pending:                        true,
		PhoneNumber:                    req.PhoneNumber,
		CountryDialCode:                req.CountryDialCode,
	})
	if err != nil {
		h.logger.Error("create user", zap.Error(err), zap.String("email", req.Email))
		response.Conflict(c, "failed to create user (email may already exist)")
		return
	}

	tempPassword := h.provisionIdentity(c.Request.Context(), user)

	if h.queue != nil {
		body := fmt.Sprintf("<p>Hello %s,</p><p>You have been added to <b>%s</b>. Your access is pending approval.</p>", user.Name, org.Name)
		if tempPassword != "" {
			body += fmt.Sprintf("<p>Your temporary password is <b>%s</b>. Change it after your first sign in.</p>", tempPassword)
		}
		err := h.queue.EnqueueEmail(c.Request.Context(), queue.EmailPayload{
			Kind:           queue.EmailKindInvite,
			OrganizationID: org.ID,
			Recipient:      user.Email,
			Subject:        fmt.Sprintf("You have been invited to %s", org.Name),
			BodyHTML:       body,
		})
		if err != nil {
			h.logger.Warn("enqueue invite email", zap.Error(err))
		}
	}

	response.Created(c, user)
}

// provisionIdentity seeds a login identity with a generated password and
// returns it for the invite email. Members whose identity already exists keep
// their own password and get no temporary one.
func (h *Handler) provisionIdentity(ctx context.Context, user *models.ApplicationUser) string {
	if h.identities == nil {
		return ""
	}
	tempPassword, err := utils.RandomPassword(12)
	if err != nil {
		h.logger.Warn("generate temporary password", zap.Error(err))
		return ""
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		h.logger.Warn("hash temporary password", zap.Error(err))
		return ""
	}
	identity, err := h.identities.Provision(ctx, user.Email, hash, user.Name)
	if err != nil {
		h.logger.Warn("provision identity", zap.Error(err), zap.String("email", user.Email))
		return ""
	}
	if identity.PasswordHash == nil || !utils.CheckPassword(tempPassword, *identity.PasswordHash) {
		return ""
	}
	return tempPassword
}

// Update handles PATCH /users/:id within the caller's organization.
func (h *Handler) Update(c *gin.Context) {
	user, ok := h.scopedUser(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), user.ID, UpdateParams{
		Name:                           req.Name,
		IsAdmin:                        req.IsAdmin,
		CanAddPeople:                   req.CanAddPeople,
		CanOrganizeEvents:              req.CanOrganizeEvents,
		CanManageMedia:                 req.CanManageMedia,
		ReceiveCancelEventNotification: req.ReceiveCancelEventNotification,
		PhoneNumber:                    req.PhoneNumber,
		CountryDialCode:                req.CountryDialCode,
		ProfileURL:                     req.ProfileURL,
	})
	if err != nil {
		response.Internal(c, "failed to update user")
		return
	}
	response.OK(c, updated)
}

// Approve handles POST /users/:id/approve within the caller's organization.
func (h *Handler) Approve(c *gin.Context) {
	user, ok := h.scopedUser(c)
	if !ok {
		return
	}
	approved, err := h.repo.Approve(c.Request.Context(), user.ID)
	if err != nil {
		response.Internal(c, "failed to approve user")
		return
	}
	response.OK(c, approved)
}

// Delete handles DELETE /users/:id within the caller's organization.
func (h *Handler) Delete(c *gin.Context) {
	user, ok := h.scopedUser(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), user.ID); err != nil {
		response.Internal(c, "failed to delete user")
		return
	}
	response.NoContent(c)
}

// Me handles GET /auth/me: the caller's own resolved profile.
func (h *Handler) Me(c *gin.Context) {
	response.OK(c, gin.H{
		"user":           auth.CurrentUser(c),
		"organization":   auth.CurrentOrganization(c),
		"is_super_admin": auth.IsSuperAdminContext(c),
	})
}

// ListAll handles GET /admin/users.
func (h *Handler) ListAll(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// ListPending handles GET /admin/users/pending.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.repo.ListPending(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list pending users")
		return
	}
	response.OK(c, list)
}

// Stats handles GET /admin/users/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to compute user stats")
		return
	}
	response.OK(c, stats)
}

// scopedUser loads the :id user and checks it belongs to the caller's
// organization; super-admins bypass the tenant check.
func (h *Handler) scopedUser(c *gin.Context) (*models.ApplicationUser, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid user id")
		return nil, false
	}
	user, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "user not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to get user")
		return nil, false
	}
	if !auth.IsSuperAdminContext(c) {
		org := auth.CurrentOrganization(c)
		if org == nil || user.OrganizationID != org.ID {
			response.Forbidden(c, "user belongs to another organization")
			return nil, false
		}
	}
	return user, true
}
