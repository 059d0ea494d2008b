package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUserStore struct {
	users map[string]*models.ApplicationUser
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (*models.ApplicationUser, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

type stubOrgStore struct {
	orgs map[int64]*models.Organization
}

func (s *stubOrgStore) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	if o, ok := s.orgs[id]; ok {
		return o, nil
	}
	return nil, pgx.ErrNoRows
}

func testResolver() *auth.Resolver {
	users := &stubUserStore{users: map[string]*models.ApplicationUser{
		"admin@church.org":   {ID: 1, Email: "admin@church.org", OrganizationID: 3, IsAdmin: true},
		"member@church.org":  {ID: 2, Email: "member@church.org", OrganizationID: 3, CanAddPeople: true},
		"pending@church.org": {ID: 4, Email: "pending@church.org", OrganizationID: 3, CanAddPeople: true, Pending: true},
	}}
	orgs := &stubOrgStore{orgs: map[int64]*models.Organization{
		3: {ID: 3, Name: "Igreja Central"},
	}}
	return auth.NewResolver([]string{"master@igrejaunida.com"}, users, orgs, nil)
}

func performJWT(t *testing.T, svc *auth.JWTService, authz string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/ping", JWT(svc), func(c *gin.Context) {
		response.OK(c, gin.H{"email": c.GetString(auth.ContextEmail)})
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 24)
	token, _, err := svc.Generate("ana@church.org")
	require.NoError(t, err)

	w := performJWT(t, svc, "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ana@church.org")

	require.Equal(t, http.StatusUnauthorized, performJWT(t, svc, "").Code)
	require.Equal(t, http.StatusUnauthorized, performJWT(t, svc, "Bearer garbage").Code)
	require.Equal(t, http.StatusUnauthorized, performJWT(t, svc, "Basic "+token).Code)
}

func performGated(t *testing.T, handler gin.HandlerFunc, email string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET("/gated",
		func(c *gin.Context) { c.Set(auth.ContextEmail, email); c.Next() },
		handler,
		func(c *gin.Context) { response.OK(c, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))
	return w
}

func TestRequireSuperAdmin(t *testing.T) {
	gate := RequireSuperAdmin(testResolver())

	require.Equal(t, http.StatusOK, performGated(t, gate, "master@igrejaunida.com").Code)
	require.Equal(t, http.StatusOK, performGated(t, gate, "MASTER@igrejaunida.com").Code)
	require.Equal(t, http.StatusForbidden, performGated(t, gate, "admin@church.org").Code)
	require.Equal(t, http.StatusForbidden, performGated(t, gate, "").Code)
}

func TestRequireCapability(t *testing.T) {
	r := testResolver()
	gate := RequireCapability(r, CanAddPeople)

	// admin bypasses individual flags, member has the flag
	require.Equal(t, http.StatusOK, performGated(t, gate, "admin@church.org").Code)
	require.Equal(t, http.StatusOK, performGated(t, gate, "member@church.org").Code)

	// super-admins are allowed everywhere
	require.Equal(t, http.StatusOK, performGated(t, gate, "master@igrejaunida.com").Code)

	// pending users are refused even with the flag set
	require.Equal(t, http.StatusForbidden, performGated(t, gate, "pending@church.org").Code)

	// unknown emails fail closed
	require.Equal(t, http.StatusForbidden, performGated(t, gate, "ghost@church.org").Code)
}

func TestRequireCapabilityMissingFlag(t *testing.T) {
	gate := RequireCapability(testResolver(), CanManageMedia)

	require.Equal(t, http.StatusForbidden, performGated(t, gate, "member@church.org").Code)
}
