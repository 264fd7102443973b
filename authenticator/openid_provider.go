package authenticator

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OpenIDConfig holds OpenID Connect configuration
type OpenIDConfig struct {
	Issuer       string // e.g. https://example.eu.auth0.com/
	ClientID     string
	ClientSecret string
	CallbackURL  string
	RolesClaim   string // defaults to "roles"
}

func (c OpenIDConfig) validate() error {
	switch {
	case c.Issuer == "":
		return errors.New("issuer is required")
	case c.ClientID == "":
		return errors.New("client ID is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.CallbackURL == "":
		return errors.New("callback URL is required")
	}
	return nil
}

// OpenIDProvider implements Provider for any OpenID Connect issuer
type OpenIDProvider struct {
	oauth      oauth2.Config
	verifier   *oidc.IDTokenVerifier
	rolesClaim string
}

// NewOpenIDProvider fetches the issuer's discovery document and builds a
// provider for it.
func NewOpenIDProvider(ctx context.Context, cfg OpenIDConfig) (Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	issuer, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", cfg.Issuer, err)
	}

	rolesClaim := cfg.RolesClaim
	if rolesClaim == "" {
		rolesClaim = "roles"
	}

	return &OpenIDProvider{
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     issuer.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier:   issuer.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		rolesClaim: rolesClaim,
	}, nil
}

// GetAuthURL returns the URL of the issuer's login page
func (p *OpenIDProvider) GetAuthURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// RolesClaim names the claim that carries the user's roles
func (p *OpenIDProvider) RolesClaim() string {
	return p.rolesClaim
}

// ExchangeCode trades an authorization code for tokens
func (p *OpenIDProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	t, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	return fromOAuth2(t), nil
}

// GetClaims verifies the ID token and returns its claims
func (p *OpenIDProvider) GetClaims(ctx context.Context, token *Token) (Claims, error) {
	if token.IDToken == "" {
		return nil, errors.New("no id_token in token")
	}

	idToken, err := p.verifier.Verify(ctx, token.IDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id_token: %w", err)
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return claims, nil
}

func fromOAuth2(t *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry.Unix(),
	}
	if idToken, ok := t.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}
	return token
}
