package authenticator

import (
	"context"
)

// Token represents an authentication token
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       int64
}

// Provider interface abstracts OAuth provider operations
type Provider interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	GetClaims(ctx context.Context, token *Token) (Claims, error)
	// RolesClaim names the claim that carries the user's roles
	RolesClaim() string
}

// Claims represents user claims from the ID token
type Claims map[string]any

// Subject returns the sub claim
func (c Claims) Subject() string {
	return c.String("sub")
}

// Email returns the email claim
func (c Claims) Email() string {
	return c.String("email")
}

// DisplayName tries nickname, then name, then email, then sub
func (c Claims) DisplayName() string {
	for _, key := range []string{"nickname", "name", "email", "sub"} {
		if v := c.String(key); v != "" {
			return v
		}
	}
	return ""
}

// String returns the claim as a string, or "" when absent or not a string
func (c Claims) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// Roles returns the string values of a list claim. A single string is
// treated as one role.
func (c Claims) Roles(key string) []string {
	switch v := c[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				roles = append(roles, s)
			}
		}
		return roles
	}
	return nil
}
