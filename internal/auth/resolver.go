package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/models"
)

// UserStore is the subset of the users repository the resolver needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.ApplicationUser, error)
}

// OrganizationStore is the subset of the organizations repository the resolver needs.
type OrganizationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
}

// Resolution is the effective application identity and tenant scope for an
// authenticated email. For super-admins Organization is always nil and the
// synthesized user carries every capability flag.
type Resolution struct {
	User         *models.ApplicationUser `json:"user"`
	Organization *models.Organization    `json:"organization"`
	IsSuperAdmin bool                    `json:"is_super_admin"`
}

// Resolver turns a verified email into a Resolution. It does not verify
// credentials; callers must authenticate first. Unknown emails fail closed:
// no profile is ever auto-provisioned at login.
type Resolver struct {
	superAdmins map[string]struct{}
	users       UserStore
	orgs        OrganizationStore
	logger      *zap.Logger
}

// NewResolver creates a resolver with the injectable super-admin allow-list.
func NewResolver(superAdminEmails []string, users UserStore, orgs OrganizationStore, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[string]struct{}, len(superAdminEmails))
	for _, e := range superAdminEmails {
		if t := strings.ToLower(strings.TrimSpace(e)); t != "" {
			admins[t] = struct{}{}
		}
	}
	return &Resolver{superAdmins: admins, users: users, orgs: orgs, logger: logger}
}

// IsSuperAdmin reports allow-list membership (case-insensitive).
func (r *Resolver) IsSuperAdmin(email string) bool {
	_, ok := r.superAdmins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Resolve determines the application user, tenant scope, and super-admin
// status for a verified email.
//
// Super-admins resolve without any store read: they have no organization and
// their capability flags are implicitly all true regardless of any stored row.
// For everyone else the profile row and its organization must both exist;
// each missing link is a distinct terminal error. Transient store failures
// are retried once with no backoff, then reported as ErrStoreUnavailable so
// callers can distinguish "no access" from "try again".
func (r *Resolver) Resolve(ctx context.Context, email string) (*Resolution, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("resolve identity: empty email")
	}

	if r.IsSuperAdmin(email) {
		now := time.Now()
		return &Resolution{
			User: &models.ApplicationUser{
				Email:                          strings.ToLower(email),
				Name:                           email,
				IsAdmin:                        true,
				CanAddPeople:                   true,
				CanOrganizeEvents:              true,
				CanManageMedia:                 true,
				ReceiveCancelEventNotification: false,
				Pending:                        false,
				CreatedAt:                      now,
				UpdatedAt:                      now,
			},
			Organization: nil,
			IsSuperAdmin: true,
		}, nil
	}

	user, err := r.getUser(ctx, email)
	if err != nil {
		return nil, err
	}

	if user.OrganizationID <= 0 {
		r.logger.Warn("user has no organization", zap.String("email", email))
		return nil, ErrNoOrganization
	}

	org, err := r.getOrganization(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}

	return &Resolution{User: user, Organization: org, IsSuperAdmin: false}, nil
}

func (r *Resolver) getUser(ctx context.Context, email string) (*models.ApplicationUser, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		// one best-effort retry for transient store failures, no backoff
		user, err = r.users.GetByEmail(ctx, email)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		if err != nil {
			r.logger.Error("user lookup failed", zap.String("email", email), zap.Error(err))
			return nil, ErrStoreUnavailable
		}
	}
	return user, nil
}

func (r *Resolver) getOrganization(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := r.orgs.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		org, err = r.orgs.GetByID(ctx, id)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrganizationNotFound
		}
		if err != nil {
			r.logger.Error("organization lookup failed", zap.Int64("organization_id", id), zap.Error(err))
			return nil, ErrStoreUnavailable
		}
	}
	return org, nil
}
