package stats

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/organizations"
	"github.com/igrejaunida/backend/internal/users"
	"github.com/igrejaunida/backend/pkg/response"
)

// Handler serves the admin-master dashboard aggregates.
type Handler struct {
	pool   *pgxpool.Pool
	orgs   *organizations.Repository
	users  *users.Repository
	logger *zap.Logger
}

// NewHandler creates a stats handler.
func NewHandler(pool *pgxpool.Pool, orgs *organizations.Repository, users *users.Repository, logger *zap.Logger) *Handler {
	return &Handler{pool: pool, orgs: orgs, users: users, logger: logger}
}

// Dashboard handles GET /admin/stats.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	orgStats, err := h.orgs.Stats(ctx)
	if err != nil {
		h.logger.Error("organization stats", zap.Error(err))
		response.Internal(c, "failed to compute organization stats")
		return
	}
	userStats, err := h.users.Stats(ctx)
	if err != nil {
		h.logger.Error("user stats", zap.Error(err))
		response.Internal(c, "failed to compute user stats")
		return
	}
	events, err := h.eventCounts(ctx)
	if err != nil {
		h.logger.Error("event stats", zap.Error(err))
		response.Internal(c, "failed to compute event stats")
		return
	}
	storageBytes, err := h.totalStorageBytes(ctx)
	if err != nil {
		h.logger.Error("storage stats", zap.Error(err))
		response.Internal(c, "failed to compute storage stats")
		return
	}

	response.OK(c, gin.H{
		"organizations":      orgStats,
		"users":              userStats,
		"events":             events,
		"storage_used_bytes": storageBytes,
	})
}

func (h *Handler) eventCounts(ctx context.Context) (map[string]int, error) {
	rows, err := h.pool.Query(ctx, `SELECT status, COUNT(*) FROM events GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		out[status] = count
	}
	return out, rows.Err()
}

func (h *Handler) totalStorageBytes(ctx context.Context) (int64, error) {
	var total int64
	err := h.pool.QueryRow(ctx, `SELECT COALESCE(SUM(size), 0) FROM files`).Scan(&total)
	return total, err
}
