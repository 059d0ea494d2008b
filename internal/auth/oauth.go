package auth

import (
	"context"
	"fmt"

	oidc "github.com/coreos/go-oidc"
	"golang.org/x/oauth2"

	"github.com/igrejaunida/backend/config"
)

// OAuthProfile is the verified profile extracted from a provider ID token.
type OAuthProfile struct {
	Email     string
	Name      string
	AvatarURL string
}

// GoogleOAuth implements the redirect-based Google sign-in handshake. It only
// produces a verified email; identity resolution happens afterwards in the
// callback handler.
type GoogleOAuth struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogleOAuth discovers the Google OIDC endpoints and builds the flow.
func NewGoogleOAuth(ctx context.Context, cfg config.GoogleOAuthConfig) (*GoogleOAuth, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	return &GoogleOAuth{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// AuthURL returns the provider redirect URL for the given CSRF state.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades the callback code for a verified profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*OAuthProfile, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("token response missing id_token")
	}
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, fmt.Errorf("provider did not return a verified email")
	}
	return &OAuthProfile{Email: claims.Email, Name: claims.Name, AvatarURL: claims.Picture}, nil
}
