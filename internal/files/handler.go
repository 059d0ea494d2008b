package files

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/internal/organizations"
	"github.com/igrejaunida/backend/pkg/response"
	"github.com/igrejaunida/backend/pkg/storage"
)

// UploadURLRequest is the body for POST /files/upload-url. The client uploads
// directly to S3 with the returned pre-signed URL, then confirms with POST /files.
type UploadURLRequest struct {
	Name        string `json:"name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
}

// ConfirmRequest is the body for POST /files, recording a completed upload.
type ConfirmRequest struct {
	Name  string  `json:"name" binding:"required"`
	Type  string  `json:"type" binding:"required"`
	Size  int64   `json:"size" binding:"required,gt=0"`
	S3Key string  `json:"s3_key" binding:"required"`
	URL   *string `json:"url"`
}

// Handler handles tenant file endpoints.
type Handler struct {
	repo   *Repository
	orgs   *organizations.Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a files handler. s3 may be nil when storage is not
// configured; URL endpoints then return 503.
func NewHandler(repo *Repository, orgs *organizations.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgs: orgs, s3: s3, logger: logger}
}

// List handles GET /files.
func (h *Handler) List(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	list, err := h.repo.ListByOrganization(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to list files")
		return
	}
	response.OK(c, list)
}

// UploadURL handles POST /files/upload-url: validates type and quota, then
// returns a pre-signed PUT URL and the object key the client must upload to.
func (h *Handler) UploadURL(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "file storage is not configured")
		return
	}
	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Size > storage.MaxFileSize {
		response.BadRequest(c, fmt.Sprintf("file exceeds maximum size of %d bytes", storage.MaxFileSize))
		return
	}
	if !storage.ValidateFileType(req.ContentType, req.Name) {
		response.BadRequest(c, "file type not allowed")
		return
	}

	used, err := h.orgs.StorageUsedBytes(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to check storage usage")
		return
	}
	if !WithinQuota(used, req.Size, org.MaxStorageGB) {
		response.Conflict(c, fmt.Sprintf("storage quota exceeded (%.0f GB plan limit)", org.MaxStorageGB))
		return
	}

	key := storage.FileKey(org.ID, req.Name)
	url, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), h.s3.FilesBucket(), key, req.ContentType)
	if err != nil {
		h.logger.Error("presign upload", zap.Error(err), zap.String("key", key))
		response.Internal(c, "failed to generate upload URL")
		return
	}
	response.OK(c, gin.H{
		"upload_url": url,
		"s3_key":     key,
		"expires_in": int(h.s3.PresignExpiry().Seconds()),
	})
}

// Confirm handles POST /files: records metadata after a client upload.
func (h *Handler) Confirm(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var uploadedBy int64
	if u := auth.CurrentUser(c); u != nil {
		uploadedBy = u.ID
	}

	file, err := h.repo.Create(c.Request.Context(), CreateParams{
		OrganizationID: org.ID,
		Name:           req.Name,
		Type:           req.Type,
		Size:           req.Size,
		S3Key:          req.S3Key,
		URL:            req.URL,
		UploadedBy:     uploadedBy,
	})
	if err != nil {
		h.logger.Error("record file", zap.Error(err))
		response.Internal(c, "failed to record file")
		return
	}
	response.Created(c, file)
}

// Usage handles GET /files/usage: current storage consumption against the
// organization's plan allowance.
func (h *Handler) Usage(c *gin.Context) {
	org := auth.CurrentOrganization(c)
	if org == nil {
		response.Forbidden(c, "no organization scope")
		return
	}
	used, err := h.orgs.StorageUsedBytes(c.Request.Context(), org.ID)
	if err != nil {
		response.Internal(c, "failed to check storage usage")
		return
	}
	response.OK(c, gin.H{
		"used_bytes":  used,
		"quota_bytes": QuotaBytes(org.MaxStorageGB),
		"max_gb":      org.MaxStorageGB,
	})
}

// DownloadURL handles GET /files/:id/download-url.
func (h *Handler) DownloadURL(c *gin.Context) {
	file, ok := h.scopedFile(c)
	if !ok {
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "file storage is not configured")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.FilesBucket(), file.S3Key)
	if err != nil {
		h.logger.Error("presign download", zap.Error(err), zap.String("key", file.S3Key))
		response.Internal(c, "failed to generate download URL")
		return
	}
	response.OK(c, gin.H{
		"download_url": url,
		"expires_in":   int(h.s3.PresignExpiry().Seconds()),
	})
}

// Delete handles DELETE /files/:id: removes the S3 object then the record.
func (h *Handler) Delete(c *gin.Context) {
	file, ok := h.scopedFile(c)
	if !ok {
		return
	}
	if h.s3 != nil {
		if err := h.s3.DeleteObject(c.Request.Context(), h.s3.FilesBucket(), file.S3Key); err != nil {
			h.logger.Warn("delete s3 object", zap.Error(err), zap.String("key", file.S3Key))
		}
	}
	if err := h.repo.Delete(c.Request.Context(), file.ID); err != nil {
		response.Internal(c, "failed to delete file")
		return
	}
	response.NoContent(c)
}

func (h *Handler) scopedFile(c *gin.Context) (*models.File, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid file id")
		return nil, false
	}
	file, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		response.NotFound(c, "file not found")
		return nil, false
	}
	if err != nil {
		response.Internal(c, "failed to get file")
		return nil, false
	}
	if !auth.IsSuperAdminContext(c) {
		org := auth.CurrentOrganization(c)
		if org == nil || file.OrganizationID != org.ID {
			response.Forbidden(c, "file belongs to another organization")
			return nil, false
		}
	}
	return file, true
}
