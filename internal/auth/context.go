package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/igrejaunida/backend/internal/models"
)

// Gin context keys set by the auth middleware chain.
const (
	// ContextEmail is the verified email from the JWT.
	ContextEmail = "auth_email"
	// ContextTokenID is the JWT token ID keying the session cache.
	ContextTokenID = "auth_token_id"
	// ContextUser is the resolved *models.ApplicationUser.
	ContextUser = "auth_user"
	// ContextOrganization is the resolved *models.Organization (nil for super-admins).
	ContextOrganization = "auth_organization"
	// ContextSuperAdmin is the resolved super-admin flag.
	ContextSuperAdmin = "auth_super_admin"
)

// CurrentUser returns the resolved application user from the request context.
func CurrentUser(c *gin.Context) *models.ApplicationUser {
	if v, ok := c.Get(ContextUser); ok {
		if u, ok := v.(*models.ApplicationUser); ok {
			return u
		}
	}
	return nil
}

// CurrentOrganization returns the resolved organization, or nil for super-admins.
func CurrentOrganization(c *gin.Context) *models.Organization {
	if v, ok := c.Get(ContextOrganization); ok {
		if o, ok := v.(*models.Organization); ok {
			return o
		}
	}
	return nil
}

// IsSuperAdminContext reports whether the current request resolved as super-admin.
func IsSuperAdminContext(c *gin.Context) bool {
	return c.GetBool(ContextSuperAdmin)
}
