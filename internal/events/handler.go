package events

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/internal/users"
	"github.com/igrejaunida/backend/pkg/queue"
	"github.com/igrejaunida/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartDate   time.Time  `json:"start_date" binding:"required"`
	EndDate     *time.Time `json:"end_date"`
	Status      string     `json:"status"`
}

// UpdateRequest is the body for PATCH /events/:id.
type UpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Status      *string    `json:"status"`
}

// ScheduleRequest is the body for POST /events/:id/schedules.
type ScheduleRequest struct {
	Date          time.Time `json:"date" binding:"required"`
	Description   string    `json:"description" binding:"required"`
	OrderPosition int       `json:"order_position"`
}

// BlockRequest is the body for POST /events/:id/blocks.
type BlockRequest struct {
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
	Reason    *string   `json:"reason"`
}

// Handler handles event endpoints.
type Handler struct {
	repo   *Repository
	users  *users.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, users *users.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, users: users, queue: q, logger: logger}
}

// List handles GET /events with optional ?status= and ?upcoming=true filters.
func (h *Handler) List(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}

	var (
		list []*models.Event
		err  error
	)
	switch {
	case c.Query("upcoming") == "true":
		list, err = h.repo.ListUpcoming(c.Request.Context(), org.ID)
	case c.Query("status") != "":
		status := c.Query("status")
		if !models.ValidEventStatus(status) {
			response.BadRequest(c, "invalid event status")
			return
		}
		list, err = h.repo.ListByStatus(c.Request.Context(), org.ID, models.EventStatus(status))
	default:
		list, err = h.repo.ListByOrganization(c.Request.Context(), org.ID)
	}
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id, including schedules and blocks.
func (h *Handler) GetByID(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	schedules, err := h.repo.ListSchedules(c.Request.Context(), event.ID)
	if err != nil {
		response.Internal(c, "failed to load schedules")
		return
	}
	blocks, err := h.repo.ListBlocks(c.Request.Context(), event.ID)
	if err != nil {
		response.Internal(c, "failed to load blocks")
		return
	}
	response.OK(c, gin.H{"event": event, "schedules": schedules, "blocks": blocks})
}

// Create handles POST /events.
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
	status := models.EventDraft
	if req.Status != "" {
		if !models.ValidEventStatus(req.Status) {
			response.BadRequest(c, "invalid event status")
			return
		}
		status = models.EventStatus(req.Status)
	}

	var createdBy int64
	if u := auth.CurrentUser(c); u != nil {
		createdBy = u.ID
	}

	event, err := h.repo.Create(c.Request.Context(), CreateParams{
		OrganizationID: org.ID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         status,
		CreatedBy:      createdBy,
	})
	if err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, event)
}

// Update handles PATCH /events/:id.
func (h *Handler) Update(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	var status *models.EventStatus
	if req.Status != nil {
		if !models.ValidEventStatus(*req.Status) {
			response.BadRequest(c, "invalid event status")
			return
		}
		s := models.EventStatus(*req.Status)
		status = &s
	}
	updated, err := h.repo.Update(c.Request.Context(), event.ID, UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      status,
	})
	if err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, updated)
}

// Cancel handles POST /events/:id/cancel: moves the event to Cancelled and
// queues a notification email for every opted-in member of the organization.
func (h *Handler) Cancel(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	if event.Status == models.EventCancelled {
		response.Conflict(c, "event is already cancelled")
		return
	}
	org := auth.CurrentOrganization(c)

	cancelled, err := h.repo.SetStatus(c.Request.Context(), event.ID, models.EventCancelled)
	if err != nil {
		response.Internal(c, "failed to cancel event")
		return
	}

	if h.queue != nil && org != nil {
		recipients, err := h.users.ListNotifiable(c.Request.Context(), org.ID)
		if err != nil {
			h.logger.Warn("list notification recipients", zap.Error(err), zap.Int64("event_id", event.ID))
		} else {
			for _, payload := range CancellationEmails(cancelled, org, recipients) {
				if err := h.queue.EnqueueEmail(c.Request.Context(), payload); err != nil {
					h.logger.Warn("enqueue cancellation email", zap.Error(err), zap.String("recipient", payload.Recipient))
				}
			}
		}
	}

	response.OK(c, cancelled)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), event.ID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// AddSchedule handles POST /events/:id/schedules.
func (h *Handler) AddSchedule(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	var req ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	schedule, err := h.repo.AddSchedule(c.Request.Context(), event.ID, req.Date, req.Description, req.OrderPosition)
	if err != nil {
		response.Internal(c, "failed to add schedule")
		return
	}
	response.Created(c, schedule)
}

// DeleteSchedule handles DELETE /events/:id/schedules/:scheduleID.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	scheduleID, err := strconv.ParseInt(c.Param("scheduleID"), 10, 64)
	if err != nil || scheduleID <= 0 {
		response.BadRequest(c, "invalid schedule id")
		return
	}
	if err := h.repo.DeleteSchedule(c.Request.Context(), event.ID, scheduleID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "schedule not found")
			return
		}
		response.Internal(c, "failed to delete schedule")
		return
	}
	response.NoContent(c)
}

// AddBlock handles POST /events/:id/blocks.
func (h *Handler) AddBlock(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	var req BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.EndDate.After(req.StartDate) {
		response.BadRequest(c, "end_date must be after start_date")
		return
	}
	block, err := h.repo.AddBlock(c.Request.Context(), event.ID, req.StartDate, req.EndDate, req.Reason)
	if err != nil {
		response.Internal(c, "failed to add block")
		return
	}
	response.Created(c, block)
}

// DeleteBlock handles DELETE /events/:id/blocks/:blockID.
func (h *Handler) DeleteBlock(c *gin.Context) {
	event, ok := h.scopedEvent(c)
	if !ok {
		return
	}
	blockID, err := strconv.ParseInt(c.Param("blockID"), 10, 64)
	if err != nil || blockID <= 0 {
		response.BadRequest(c, "invalid block id")
		return
	}
	if err := h.repo.DeleteBlock(c.Request.Context(), event.ID, blockID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "block not found")
			return
		}
		response.Internal(c, "failed to delete block")
		return
	}
	response.NoContent(c)
}

// scopedEvent loads the :id event and checks it belongs to the caller's
// organization; super-admins bypass the tenant check.
func (h *Handler) scopedEvent(c *gin.Context) (*models.Event, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid event id")
		return nil, false
	}
	event, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "event not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to get event")
		return nil, false
	}
	if !auth.IsSuperAdminContext(c) {
		org := auth.CurrentOrganization(c)
		if org == nil || event.OrganizationID != org.ID {
			response.Forbidden(c, "event belongs to another organization")
			return nil, false
		}
	}
	return event, true
}
