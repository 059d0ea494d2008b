package auth

import "errors"

// Sentinel errors for authentication and identity resolution. Resolution
// errors are terminal for a login attempt and map to distinct user-facing
// messages; ErrStoreUnavailable is the only condition worth retrying later.
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("no application profile associated with this identity")
	ErrNoOrganization       = errors.New("user has no organization assigned")
	ErrOrganizationNotFound = errors.New("user's organization does not exist")
	ErrStoreUnavailable     = errors.New("persistent store unavailable")
)
