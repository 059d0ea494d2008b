package emaillogs

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/pkg/response"
)

// Handler exposes the email delivery log to the admin-master console.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /admin/email-logs with optional ?status= filter.
func (h *Handler) List(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "", "queued", "sent", "failed":
	default:
		response.BadRequest(c, "invalid status filter")
		return
	}
	list, err := h.repo.List(c.Request.Context(), status, 100)
	if err != nil {
		response.Internal(c, "failed to list email logs")
		return
	}
	response.OK(c, list)
}
