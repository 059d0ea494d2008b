package auth

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

	"github.com/igrejaunida/backend/internal/models"
	"github.com/igrejaunida/backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeIdentityStore struct {
	identities map[string]*models.Identity
	created    []string
}

func (f *fakeIdentityStore) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if i, ok := f.identities[email]; ok {
		return i, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeIdentityStore) Create(ctx context.Context, email, passwordHash, displayName string, avatarURL *string) (*models.Identity, error) {
	i := &models.Identity{ID: int64(len(f.identities) + 1), Email: email, PasswordHash: &passwordHash, DisplayName: displayName}
	f.identities[email] = i
	f.created = append(f.created, email)
	return i, nil
}

func (f *fakeIdentityStore) UpsertOAuth(ctx context.Context, email, displayName string, avatarURL *string) (*models.Identity, error) {
	return f.Create(ctx, email, "", displayName, avatarURL)
}

func (f *fakeIdentityStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	for _, i := range f.identities {
		if i.ID == id {
			i.PasswordHash = &passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func passwordStore(t *testing.T, email, password string) *fakeIdentityStore {
	t.Helper()
	store := &fakeIdentityStore{identities: map[string]*models.Identity{}}
	if email != "" {
		var hash *string
		if password != "" {
			h, err := utils.HashPassword(password)
			require.NoError(t, err)
			hash = &h
		}
		store.identities[email] = &models.Identity{ID: 1, Email: email, PasswordHash: hash, DisplayName: email}
	}
	return store
}

func performPassword(h *Handler, email, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/auth/password",
		func(c *gin.Context) { c.Set(ContextEmail, email); c.Next() },
		h.ChangePassword)

	req := httptest.NewRequest(http.MethodPost, "/auth/password", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestChangePasswordRotates(t *testing.T) {
	store := passwordStore(t, "ana@church.org", "old-password")
	h := &Handler{identities: store, logger: zap.NewNop()}

	w := performPassword(h, "ana@church.org", `{"current_password":"old-password","new_password":"new-password-1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, utils.CheckPassword("new-password-1", *store.identities["ana@church.org"].PasswordHash))
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	store := passwordStore(t, "ana@church.org", "old-password")
	h := &Handler{identities: store, logger: zap.NewNop()}

	w := performPassword(h, "ana@church.org", `{"current_password":"guess","new_password":"new-password-1"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.True(t, utils.CheckPassword("old-password", *store.identities["ana@church.org"].PasswordHash))
}

func TestChangePasswordForOAuthOnlyIdentity(t *testing.T) {
	// signed in through Google, no password on record yet
	store := passwordStore(t, "ana@church.org", "")
	h := &Handler{identities: store, logger: zap.NewNop()}

	w := performPassword(h, "ana@church.org", `{"new_password":"chosen-password"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, utils.CheckPassword("chosen-password", *store.identities["ana@church.org"].PasswordHash))
}

func TestChangePasswordCreatesMissingIdentity(t *testing.T) {
	store := passwordStore(t, "", "")
	h := &Handler{identities: store, logger: zap.NewNop()}

	w := performPassword(h, "master@igrejaunida.com", `{"new_password":"chosen-password"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []string{"master@igrejaunida.com"}, store.created)
	require.True(t, utils.CheckPassword("chosen-password", *store.identities["master@igrejaunida.com"].PasswordHash))
}

func TestChangePasswordValidation(t *testing.T) {
	store := passwordStore(t, "ana@church.org", "old-password")
	h := &Handler{identities: store, logger: zap.NewNop()}

	require.Equal(t, http.StatusBadRequest, performPassword(h, "ana@church.org", `{"new_password":"short"}`).Code)
	require.Equal(t, http.StatusUnauthorized, performPassword(h, "", `{"new_password":"new-password-1"}`).Code)
}
