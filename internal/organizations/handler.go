package organizations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/response"
	"github.com/igrejaunida/backend/pkg/utils"
)

// CreateRequest is the body for POST /admin/organizations.
type CreateRequest struct {
	Name             string  `json:"name" binding:"required"`
	SubscriptionPlan string  `json:"subscription_plan"`
	MaxUsers         int     `json:"max_users"`
	MaxStorageGB     float64 `json:"max_storage_gb"`
	OwnerEmail       string  `json:"owner_email" binding:"required,email"`
	OwnerName        string  `json:"owner_name"`
	OwnerPassword    string  `json:"owner_password" binding:"required,min=8"`
}

// UpdateRequest is the body for PATCH /admin/organizations/:id.
type UpdateRequest struct {
	Name             *string  `json:"name"`
	SubscriptionPlan *string  `json:"subscription_plan"`
	MaxUsers         *int     `json:"max_users"`
	MaxStorageGB     *float64 `json:"max_storage_gb"`
}

// Handler handles organization endpoints (admin-master surface).
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /admin/organizations.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list organizations")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /admin/organizations/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "organization not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to get organization")
		return
	}
	response.OK(c, org)
}

// Create handles POST /admin/organizations: the organization and its owner
// user are created atomically.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	plan := models.PlanFree
	if req.SubscriptionPlan != "" {
		if !models.ValidPlan(req.SubscriptionPlan) {
			response.BadRequest(c, "invalid subscription plan")
			return
		}
		plan = models.SubscriptionPlan(req.SubscriptionPlan)
	}
	maxUsers := req.MaxUsers
	if maxUsers <= 0 {
		maxUsers = 15
	}
	maxStorage := req.MaxStorageGB
	if maxStorage <= 0 {
		maxStorage = 10
	}
	ownerName := req.OwnerName
	if ownerName == "" {
		ownerName = req.OwnerEmail
	}
	ownerHash, err := utils.HashPassword(req.OwnerPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	org, owner, err := h.repo.CreateWithOwner(c.Request.Context(), CreateParams{
		Name:              req.Name,
		Plan:              plan,
		MaxUsers:          maxUsers,
		MaxStorageGB:      maxStorage,
		OwnerEmail:        req.OwnerEmail,
		OwnerName:         ownerName,
		OwnerPasswordHash: ownerHash,
	})
	if err != nil {
		h.logger.Error("create organization", zap.Error(err), zap.String("name", req.Name))
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, gin.H{"organization": org, "owner": owner})
}

// Update handles PATCH /admin/organizations/:id.
func (h *Handler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	var plan *models.SubscriptionPlan
	if req.SubscriptionPlan != nil {
		if !models.ValidPlan(*req.SubscriptionPlan) {
			response.BadRequest(c, "invalid subscription plan")
			return
		}
		p := models.SubscriptionPlan(*req.SubscriptionPlan)
		plan = &p
	}
	org, err := h.repo.Update(c.Request.Context(), id, UpdateParams{
		Name:         req.Name,
		Plan:         plan,
		MaxUsers:     req.MaxUsers,
		MaxStorageGB: req.MaxStorageGB,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "organization not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to update organization")
		return
	}
	response.OK(c, org)
}

// Delete handles DELETE /admin/organizations/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	err := h.repo.Delete(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "organization not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to delete organization")
		return
	}
	response.NoContent(c)
}

// Stats handles GET /admin/organizations/stats.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.repo.Stats(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to compute organization stats")
		return
	}
	response.OK(c, stats)
}
