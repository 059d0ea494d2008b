package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/igrejaunida/backend/internal/models"
)

type fakeUserStore struct {
	users map[string]*models.ApplicationUser
	errs  []error // consumed per call before users is consulted
	calls int
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.ApplicationUser, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	u, ok := f.users[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

type fakeOrgStore struct {
	orgs  map[int64]*models.Organization
	errs  []error
	calls int
}

func (f *fakeOrgStore) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	o, ok := f.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return o, nil
}

func newTestResolver(admins []string, users *fakeUserStore, orgs *fakeOrgStore) *Resolver {
	if users == nil {
		users = &fakeUserStore{users: map[string]*models.ApplicationUser{}}
	}
	if orgs == nil {
		orgs = &fakeOrgStore{orgs: map[int64]*models.Organization{}}
	}
	return NewResolver(admins, users, orgs, nil)
}

func TestResolveSuperAdmin(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.ApplicationUser{}}
	orgs := &fakeOrgStore{orgs: map[int64]*models.Organization{}}
	r := newTestResolver([]string{"master@igrejaunida.com"}, users, orgs)

	res, err := r.Resolve(context.Background(), "master@igrejaunida.com")
	require.NoError(t, err)
	require.True(t, res.IsSuperAdmin)
	require.Nil(t, res.Organization)
	require.NotNil(t, res.User)
	require.True(t, res.User.IsAdmin)
	require.True(t, res.User.CanAddPeople)
	require.True(t, res.User.CanOrganizeEvents)
	require.True(t, res.User.CanManageMedia)
	require.False(t, res.User.Pending)

	// no store reads for allow-listed emails, even when a profile row exists
	require.Zero(t, users.calls)
	require.Zero(t, orgs.calls)
}

func TestResolveSuperAdminCaseInsensitive(t *testing.T) {
	r := newTestResolver([]string{"Master@IgrejaUnida.com"}, nil, nil)

	for _, email := range []string{"master@igrejaunida.com", "MASTER@IGREJAUNIDA.COM", "  master@igrejaunida.com "} {
		res, err := r.Resolve(context.Background(), email)
		require.NoError(t, err, email)
		require.True(t, res.IsSuperAdmin, email)
	}
}

func TestResolveSuperAdminIgnoresStoredRow(t *testing.T) {
	// An allow-listed email with a stored profile still resolves as a
	// super-admin with nil organization.
	users := &fakeUserStore{users: map[string]*models.ApplicationUser{
		"master@igrejaunida.com": {ID: 9, Email: "master@igrejaunida.com", OrganizationID: 2, Pending: true},
	}}
	r := newTestResolver([]string{"master@igrejaunida.com"}, users, nil)

	res, err := r.Resolve(context.Background(), "master@igrejaunida.com")
	require.NoError(t, err)
	require.True(t, res.IsSuperAdmin)
	require.Nil(t, res.Organization)
	require.False(t, res.User.Pending)
}

func TestResolveRegularUser(t *testing.T) {
	user := &models.ApplicationUser{ID: 5, Email: "ana@church.org", Name: "Ana", OrganizationID: 3, Pending: true}
	org := &models.Organization{ID: 3, Name: "Igreja Central", SubscriptionPlan: models.PlanFree}
	users := &fakeUserStore{users: map[string]*models.ApplicationUser{"ana@church.org": user}}
	orgs := &fakeOrgStore{orgs: map[int64]*models.Organization{3: org}}
	r := newTestResolver(nil, users, orgs)

	res, err := r.Resolve(context.Background(), "ana@church.org")
	require.NoError(t, err)
	require.False(t, res.IsSuperAdmin)
	require.Equal(t, int64(5), res.User.ID)
	require.Equal(t, int64(3), res.Organization.ID)
	require.True(t, res.User.Pending)
}

func TestResolveUnknownEmailFailsClosed(t *testing.T) {
	r := newTestResolver([]string{"master@igrejaunida.com"}, nil, nil)

	res, err := r.Resolve(context.Background(), "newhire@church.org")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Nil(t, res)
}

func TestResolveEmptyEmail(t *testing.T) {
	r := newTestResolver(nil, nil, nil)

	_, err := r.Resolve(context.Background(), "   ")
	require.Error(t, err)
}

func TestResolveUserWithoutOrganization(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.ApplicationUser{
		"drift@church.org": {ID: 7, Email: "drift@church.org", OrganizationID: 0},
	}}
	r := newTestResolver(nil, users, nil)

	_, err := r.Resolve(context.Background(), "drift@church.org")
	require.ErrorIs(t, err, ErrNoOrganization)
}

func TestResolveMissingOrganizationRow(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.ApplicationUser{
		"ana@church.org": {ID: 5, Email: "ana@church.org", OrganizationID: 42},
	}}
	orgs := &fakeOrgStore{orgs: map[int64]*models.Organization{}}
	r := newTestResolver(nil, users, orgs)

	_, err := r.Resolve(context.Background(), "ana@church.org")
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestResolveRetriesOnceThenRecovers(t *testing.T) {
	user := &models.ApplicationUser{ID: 5, Email: "ana@church.org", OrganizationID: 3}
	org := &models.Organization{ID: 3, Name: "Igreja Central"}
	users := &fakeUserStore{
		users: map[string]*models.ApplicationUser{"ana@church.org": user},
		errs:  []error{errors.New("connection reset")},
	}
	orgs := &fakeOrgStore{orgs: map[int64]*models.Organization{3: org}}
	r := newTestResolver(nil, users, orgs)

	res, err := r.Resolve(context.Background(), "ana@church.org")
	require.NoError(t, err)
	require.Equal(t, int64(5), res.User.ID)
	require.Equal(t, 2, users.calls)
}

func TestResolveStoreUnavailableAfterRetry(t *testing.T) {
	users := &fakeUserStore{
		users: map[string]*models.ApplicationUser{},
		errs:  []error{errors.New("connection reset"), errors.New("connection reset")},
	}
	r := newTestResolver(nil, users, nil)

	_, err := r.Resolve(context.Background(), "ana@church.org")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Equal(t, 2, users.calls)
}

func TestResolveOrgStoreUnavailableAfterRetry(t *testing.T) {
	users := &fakeUserStore{users: map[string]*models.ApplicationUser{
		"ana@church.org": {ID: 5, Email: "ana@church.org", OrganizationID: 3},
	}}
	orgs := &fakeOrgStore{
		orgs: map[int64]*models.Organization{},
		errs: []error{errors.New("timeout"), errors.New("timeout")},
	}
	r := newTestResolver(nil, users, orgs)

	_, err := r.Resolve(context.Background(), "ana@church.org")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	require.Equal(t, 2, orgs.calls)
}

func TestIsSuperAdmin(t *testing.T) {
	r := newTestResolver([]string{" master@igrejaunida.com ", ""}, nil, nil)

	require.True(t, r.IsSuperAdmin("master@igrejaunida.com"))
	require.True(t, r.IsSuperAdmin("MASTER@igrejaunida.com"))
	require.False(t, r.IsSuperAdmin("other@igrejaunida.com"))
	require.False(t, r.IsSuperAdmin(""))
}
