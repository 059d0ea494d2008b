package music

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/response"
)

// CreateRequest is the body for POST /music.
type CreateRequest struct {
	Title      string  `json:"title" binding:"required"`
	Artist     *string `json:"artist"`
	Key        *string `json:"key"`
	BPM        *int    `json:"bpm"`
	Lyrics     *string `json:"lyrics"`
	YoutubeURL *string `json:"youtube_url"`
}

// UpdateRequest is the body for PATCH /music/:id.
type UpdateRequest struct {
	Title      *string `json:"title"`
	Artist     *string `json:"artist"`
	Key        *string `json:"key"`
	BPM        *int    `json:"bpm"`
	Lyrics     *string `json:"lyrics"`
	YoutubeURL *string `json:"youtube_url"`
}

// Handler handles song library endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a music handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /music with an optional ?q= search term.
func (h *Handler) List(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	var (
		list []*models.Music
		err  error
	)
	if term := c.Query("q"); term != "" {
		list, err = h.repo.Search(c.Request.Context(), org.ID, term)
	} else {
		list, err = h.repo.ListByOrganization(c.Request.Context(), org.ID)
	}
	if err != nil {
		response.Internal(c, "failed to list music")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /music/:id.
func (h *Handler) GetByID(c *gin.Context) {
	song, ok := h.scopedSong(c)
	if !ok {
		return
	}
	response.OK(c, song)
}

// Create handles POST /music.
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
	song, err := h.repo.Create(c.Request.Context(), CreateParams{
		OrganizationID: org.ID,
		Title:          req.Title,
		Artist:         req.Artist,
		Key:            req.Key,
		BPM:            req.BPM,
		Lyrics:         req.Lyrics,
		YoutubeURL:     req.YoutubeURL,
	})
	if err != nil {
		h.logger.Error("create music", zap.Error(err))
		response.Internal(c, "failed to create music")
		return
	}
	response.Created(c, song)
}

// Update handles PATCH /music/:id.
func (h *Handler) Update(c *gin.Context) {
	song, ok := h.scopedSong(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	updated, err := h.repo.Update(c.Request.Context(), song.ID, UpdateParams{
		Title:      req.Title,
		Artist:     req.Artist,
		Key:        req.Key,
		BPM:        req.BPM,
		Lyrics:     req.Lyrics,
		YoutubeURL: req.YoutubeURL,
	})
	if err != nil {
		response.Internal(c, "failed to update music")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /music/:id.
func (h *Handler) Delete(c *gin.Context) {
	song, ok := h.scopedSong(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), song.ID); err != nil {
		response.Internal(c, "failed to delete music")
		return
	}
	response.NoContent(c)
}

func (h *Handler) scopedSong(c *gin.Context) (*models.Music, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid music id")
		return nil, false
	}
	song, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "music not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to get music")
		return nil, false
	}
	if !auth.IsSuperAdminContext(c) {
		org := auth.CurrentOrganization(c)
		if org == nil || song.OrganizationID != org.ID {
			response.Forbidden(c, "music belongs to another organization")
			return nil, false
		}
	}
	return song, true
}
