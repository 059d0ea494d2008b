package teams

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/auth"
	"github.com/igrejaunida/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore keeps teams, positions and assignments in maps and enforces the
// same team scoping the SQL predicates do.
type fakeStore struct {
	teams         map[int64]*models.OrganizationTeam
	positionTeams map[int64]int64 // position id -> owning team id
	assignments   map[int64]int64 // assignment id -> position id
	userPositions map[int64][]*models.TeamPosition
}

func (f *fakeStore) GetTeam(ctx context.Context, id int64) (*models.OrganizationTeam, error) {
	if t, ok := f.teams[id]; ok {
		return t, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ListTeams(ctx context.Context, orgID int64) ([]*models.OrganizationTeam, error) {
	return nil, nil
}

func (f *fakeStore) CreateTeam(ctx context.Context, orgID int64, name string, description *string) (*models.OrganizationTeam, error) {
	return nil, nil
}

func (f *fakeStore) UpdateTeam(ctx context.Context, id int64, name, description *string) (*models.OrganizationTeam, error) {
	return nil, nil
}

func (f *fakeStore) DeleteTeam(ctx context.Context, id int64) error { return nil }

func (f *fakeStore) ListPositions(ctx context.Context, teamID int64) ([]*models.TeamPosition, error) {
	return nil, nil
}

func (f *fakeStore) CreatePosition(ctx context.Context, teamID int64, name string) (*models.TeamPosition, error) {
	return nil, nil
}

func (f *fakeStore) DeletePosition(ctx context.Context, teamID, positionID int64) error {
	if f.positionTeams[positionID] != teamID {
		return pgx.ErrNoRows
	}
	delete(f.positionTeams, positionID)
	return nil
}

func (f *fakeStore) AssignUser(ctx context.Context, userID, teamID, positionID int64) (*models.TeamPositionAssignment, error) {
	if f.positionTeams[positionID] != teamID {
		return nil, pgx.ErrNoRows
	}
	id := int64(len(f.assignments) + 1000)
	f.assignments[id] = positionID
	return &models.TeamPositionAssignment{ID: id, ApplicationUserID: userID, TeamPositionID: positionID}, nil
}

func (f *fakeStore) UnassignUser(ctx context.Context, teamID, assignmentID int64) error {
	positionID, ok := f.assignments[assignmentID]
	if !ok || f.positionTeams[positionID] != teamID {
		return pgx.ErrNoRows
	}
	delete(f.assignments, assignmentID)
	return nil
}

func (f *fakeStore) ListMembers(ctx context.Context, teamID int64) ([]*models.TeamMember, error) {
	return nil, nil
}

func (f *fakeStore) ListUserPositions(ctx context.Context, userID int64) ([]*models.TeamPosition, error) {
	return f.userPositions[userID], nil
}

type fakeDirectory struct {
	users map[int64]*models.ApplicationUser
}

func (f *fakeDirectory) GetByID(ctx context.Context, id int64) (*models.ApplicationUser, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, pgx.ErrNoRows
}

// Two tenants: org 3 (the caller's) owns team 1 with position 10 and
// assignment 100; org 9 owns team 2 with position 20 and assignment 200.
func testHandler() (*Handler, *fakeStore) {
	store := &fakeStore{
		teams: map[int64]*models.OrganizationTeam{
			1: {ID: 1, OrganizationID: 3, Name: "Worship"},
			2: {ID: 2, OrganizationID: 9, Name: "Foreign"},
		},
		positionTeams: map[int64]int64{10: 1, 20: 2},
		assignments:   map[int64]int64{100: 10, 200: 20},
		userPositions: map[int64][]*models.TeamPosition{
			7: {{ID: 10, OrganizationTeamID: 1, Name: "Vocals"}},
		},
	}
	dir := &fakeDirectory{users: map[int64]*models.ApplicationUser{
		7: {ID: 7, Email: "ana@church.org", OrganizationID: 3},
		8: {ID: 8, Email: "other@elsewhere.org", OrganizationID: 9},
	}}
	return &Handler{repo: store, users: dir, logger: zap.NewNop()}, store
}

func testRouter(h *Handler) *gin.Engine {
	router := gin.New()
	scope := func(c *gin.Context) {
		c.Set(auth.ContextOrganization, &models.Organization{ID: 3, Name: "Igreja Central"})
		c.Next()
	}
	router.POST("/teams/:id/positions/:positionID/members", scope, h.Assign)
	router.DELETE("/teams/:id/members/:assignmentID", scope, h.Unassign)
	router.GET("/users/:id/positions", scope, h.UserPositions)
	return router
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body == "" {
		buf = bytes.NewBuffer(nil)
	} else {
		buf = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAssign(t *testing.T) {
	h, store := testHandler()
	router := testRouter(h)

	w := perform(router, http.MethodPost, "/teams/1/positions/10/members", `{"user_id":7}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.assignments, 3)
}

func TestAssignRejectsForeignPosition(t *testing.T) {
	h, store := testHandler()
	router := testRouter(h)

	// position 20 belongs to another tenant's team
	w := perform(router, http.MethodPost, "/teams/1/positions/20/members", `{"user_id":7}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, store.assignments, 2)
}

func TestAssignRejectsForeignUser(t *testing.T) {
	h, store := testHandler()
	router := testRouter(h)

	w := perform(router, http.MethodPost, "/teams/1/positions/10/members", `{"user_id":8}`)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Len(t, store.assignments, 2)
}

func TestUnassign(t *testing.T) {
	h, store := testHandler()
	router := testRouter(h)

	w := perform(router, http.MethodDelete, "/teams/1/members/100", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.NotContains(t, store.assignments, int64(100))
}

func TestUnassignRejectsForeignAssignment(t *testing.T) {
	h, store := testHandler()
	router := testRouter(h)

	// assignment 200 hangs off another tenant's team
	w := perform(router, http.MethodDelete, "/teams/1/members/200", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, store.assignments, int64(200))
}

func TestUserPositions(t *testing.T) {
	h, _ := testHandler()
	router := testRouter(h)

	w := perform(router, http.MethodGet, "/users/7/positions", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Vocals")

	require.Equal(t, http.StatusForbidden, perform(router, http.MethodGet, "/users/8/positions", "").Code)
	require.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/users/99/positions", "").Code)
}
