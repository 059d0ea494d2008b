package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/pkg/response"
)

// Session returns a middleware that attaches the resolved session (user,
// organization, super-admin flag) to the request context. The Redis cache is
// the fast path; a miss re-resolves against the store and refills the cache.
// Must run after JWT.
func Session(resolver *auth.Resolver, sessions *auth.SessionStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(auth.ContextEmail)
		jti := c.GetString(auth.ContextTokenID)

		if sess, err := sessions.Get(c.Request.Context(), jti); err == nil {
			setResolution(c, &sess.Resolution)
			c.Next()
			return
		}

		res, err := resolver.Resolve(c.Request.Context(), email)
		if err != nil {
			abortResolution(c, err)
			return
		}
		if err := sessions.Save(c.Request.Context(), jti, res); err != nil {
			logger.Warn("refill session cache", zap.Error(err))
		}
		setResolution(c, res)
		c.Next()
	}
}

// RequireSuperAdmin gates a route on super-admin status. The cached session
// is never trusted for this: the admin allow-list check is re-run against the
// verified email on every request.
func RequireSuperAdmin(resolver *auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(auth.ContextEmail)
		if !resolver.IsSuperAdmin(email) {
			response.Forbidden(c, "super-admin access required")
			c.Abort()
			return
		}
		c.Set(auth.ContextSuperAdmin, true)
		c.Next()
	}
}

// RequireCapability gates a route on a tenant capability flag. Cached flags
// are a hint only, so this re-resolves from the store before allowing the
// action; pending users are always refused.
func RequireCapability(resolver *auth.Resolver, pick func(res *auth.Resolution) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(auth.ContextEmail)
		res, err := resolver.Resolve(c.Request.Context(), email)
		if err != nil {
			abortResolution(c, err)
			return
		}
		if res.User.Pending {
			response.Forbidden(c, "account pending approval")
			c.Abort()
			return
		}
		if !res.IsSuperAdmin && !pick(res) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		setResolution(c, res)
		c.Next()
	}
}

// Capability pickers for RequireCapability.
var (
	CanAddPeople      = func(res *auth.Resolution) bool { return res.User.IsAdmin || res.User.CanAddPeople }
	CanOrganizeEvents = func(res *auth.Resolution) bool { return res.User.IsAdmin || res.User.CanOrganizeEvents }
	CanManageMedia    = func(res *auth.Resolution) bool { return res.User.IsAdmin || res.User.CanManageMedia }
	IsOrgAdmin        = func(res *auth.Resolution) bool { return res.User.IsAdmin }
)

func setResolution(c *gin.Context, res *auth.Resolution) {
	c.Set(auth.ContextUser, res.User)
	c.Set(auth.ContextOrganization, res.Organization)
	c.Set(auth.ContextSuperAdmin, res.IsSuperAdmin)
}

func abortResolution(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrStoreUnavailable):
		response.ServiceUnavailable(c, "try again later")
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrNoOrganization),
		errors.Is(err, auth.ErrOrganizationNotFound):
		response.Forbidden(c, err.Error())
	default:
		response.Internal(c, "identity resolution failed")
	}
	c.Abort()
}
