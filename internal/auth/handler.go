package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/response"
	"github.com/igrejaunida/backend/pkg/utils"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT and the resolved session.
type TokenResponse struct {
	Token   string     `json:"token"`
	Session Resolution `json:"session"`
}

// identityStore is the identity persistence surface the handler uses.
type identityStore interface {
	GetByEmail(ctx context.Context, email string) (*models.Identity, error)
	Create(ctx context.Context, email, passwordHash, displayName string, avatarURL *string) (*models.Identity, error)
	UpsertOAuth(ctx context.Context, email, displayName string, avatarURL *string) (*models.Identity, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// Handler handles auth HTTP endpoints: login, logout, OAuth, session restore.
type Handler struct {
	identities identityStore
	resolver   *Resolver
	sessions   *SessionStore
	jwt        *JWTService
	google     *GoogleOAuth
	logger     *zap.Logger
}

// NewHandler creates an auth handler. google may be nil when OAuth is not configured.
func NewHandler(identities *Repository, resolver *Resolver, sessions *SessionStore, jwt *JWTService, google *GoogleOAuth, logger *zap.Logger) *Handler {
	return &Handler{identities: identities, resolver: resolver, sessions: sessions, jwt: jwt, google: google, logger: logger}
}

// Login handles POST /auth/login: verify credentials against the identities
// table, resolve the application identity, persist the session, issue a JWT.
// Unknown emails and bad passwords both answer 401 with the same message.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	identity, err := h.identities.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, ErrInvalidCredentials.Error())
		return
	}
	if identity.PasswordHash == nil || !utils.CheckPassword(req.Password, *identity.PasswordHash) {
		response.Unauthorized(c, ErrInvalidCredentials.Error())
		return
	}

	h.completeLogin(c, identity.Email)
}

// PasswordRequest is the body for POST /auth/password.
type PasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword handles POST /auth/password: set or rotate the password for
// the authenticated email. Identities that only ever signed in through Google
// have no password yet and may set one without a current password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	email := c.GetString(ContextEmail)
	if email == "" {
		response.Unauthorized(c, "not authenticated")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	identity, err := h.identities.GetByEmail(c.Request.Context(), email)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := h.identities.Create(c.Request.Context(), email, hash, email, nil); err != nil {
			h.logger.Error("create identity", zap.Error(err))
			response.Internal(c, "failed to set password")
			return
		}
		response.OK(c, gin.H{"updated": true})
		return
	}
	if err != nil {
		response.Internal(c, "failed to load identity")
		return
	}

	if identity.PasswordHash != nil && !utils.CheckPassword(req.CurrentPassword, *identity.PasswordHash) {
		response.Unauthorized(c, ErrInvalidCredentials.Error())
		return
	}
	if err := h.identities.UpdatePassword(c.Request.Context(), identity.ID, hash); err != nil {
		h.logger.Error("update password", zap.Error(err))
		response.Internal(c, "failed to set password")
		return
	}
	response.OK(c, gin.H{"updated": true})
}

// GoogleRedirect handles GET /auth/google: start the redirect handshake.
func (h *Handler) GoogleRedirect(c *gin.Context) {
	if h.google == nil {
		response.ServiceUnavailable(c, "google sign-in not configured")
		return
	}
	state := uuid.New().String()
	if err := h.sessions.SaveOAuthState(c.Request.Context(), state, 10*time.Minute); err != nil {
		h.logger.Error("save oauth state", zap.Error(err))
		response.ServiceUnavailable(c, "try again later")
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthURL(state))
}

// GoogleCallback handles GET /auth/google/callback: verify the provider
// response, then resolve the confirmed email exactly like a password login.
// Any previously cached session for this browser is overwritten, not trusted.
func (h *Handler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		response.ServiceUnavailable(c, "google sign-in not configured")
		return
	}
	state := c.Query("state")
	ok, err := h.sessions.TakeOAuthState(c.Request.Context(), state)
	if err != nil {
		h.logger.Error("take oauth state", zap.Error(err))
		response.ServiceUnavailable(c, "try again later")
		return
	}
	if state == "" || !ok {
		response.BadRequest(c, "invalid oauth state")
		return
	}

	profile, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Warn("google exchange failed", zap.Error(err))
		response.Unauthorized(c, "google sign-in failed")
		return
	}

	if _, err := h.identities.UpsertOAuth(c.Request.Context(), profile.Email, profile.Name, optional(profile.AvatarURL)); err != nil {
		h.logger.Error("upsert oauth identity", zap.Error(err))
		response.ServiceUnavailable(c, "try again later")
		return
	}

	h.completeLogin(c, profile.Email)
}

// completeLogin resolves the verified email and commits the session. On any
// resolution failure nothing is persisted and the caller stays anonymous.
func (h *Handler) completeLogin(c *gin.Context, email string) {
	res, err := h.resolver.Resolve(c.Request.Context(), email)
	if err != nil {
		respondResolutionError(c, err)
		return
	}

	token, jti, err := h.jwt.Generate(email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	if err := h.sessions.Save(c.Request.Context(), jti, res); err != nil {
		h.logger.Error("persist session", zap.Error(err))
		response.ServiceUnavailable(c, "try again later")
		return
	}

	c.JSON(http.StatusOK, response.Body{Success: true, Data: TokenResponse{Token: token, Session: *res}})
}

// Session handles GET /auth/session: restore the session for the presented
// token. The store is re-validated first; the cached session is a fallback
// used only when the store is transiently unavailable.
func (h *Handler) Session(c *gin.Context) {
	email := c.GetString(ContextEmail)
	jti := c.GetString(ContextTokenID)

	res, err := h.resolver.Resolve(c.Request.Context(), email)
	if err == nil {
		if err := h.sessions.Save(c.Request.Context(), jti, res); err != nil {
			h.logger.Warn("refresh session cache", zap.Error(err))
		}
		response.OK(c, res)
		return
	}

	if errors.Is(err, ErrStoreUnavailable) {
		if cached, cerr := h.sessions.Get(c.Request.Context(), jti); cerr == nil {
			h.logger.Warn("serving cached session, store unavailable", zap.String("email", email))
			response.OK(c, cached.Resolution)
			return
		}
		response.ServiceUnavailable(c, "try again later")
		return
	}

	// identity no longer resolves: drop the cache and report anonymous
	_ = h.sessions.Delete(c.Request.Context(), jti)
	respondResolutionError(c, err)
}

// Logout handles POST /auth/logout. Idempotent: logging out an already
// anonymous session succeeds.
func (h *Handler) Logout(c *gin.Context) {
	jti := c.GetString(ContextTokenID)
	if err := h.sessions.Delete(c.Request.Context(), jti); err != nil {
		h.logger.Warn("delete session", zap.Error(err))
	}
	response.OK(c, gin.H{"logged_out": true})
}

func respondResolutionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNoOrganization), errors.Is(err, ErrOrganizationNotFound):
		response.Forbidden(c, err.Error())
	case errors.Is(err, ErrStoreUnavailable):
		response.ServiceUnavailable(c, "try again later")
	default:
		response.Internal(c, "identity resolution failed")
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
