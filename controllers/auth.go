package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/inkwell/authenticator"
	"github.com/blogem/inkwell/middleware"
)

type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// Login initiates the authentication process
func (ac *AuthController) Login(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Generate random state
		state, err := generateRandomState()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// Save the state in the session to validate in callback
		sess := session.GetSession(r)
		sess.Set("state", state)

		// Redirect to the provider's login page
		http.Redirect(w, r, auth.GetAuthURL(state), http.StatusTemporaryRedirect)
	}
}

// Callback handles the callback from the provider
func (ac *AuthController) Callback(auth authenticator.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		// Verify state
		storedState, _ := sess.Get("state").(string)
		if storedState == "" {
			http.Error(w, "State not found in session", http.StatusBadRequest)
			return
		}

		if r.URL.Query().Get("state") != storedState {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// Exchange the code for a token
		token, err := auth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, "Failed to exchange authorization code for a token: "+err.Error(), http.StatusUnauthorized)
			return
		}

		// Verify the ID token and extract profile information
		claims, err := auth.GetClaims(r.Context(), token)
		if err != nil {
			http.Error(w, "Failed to verify ID Token: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if claims.Subject() == "" {
			http.Error(w, "ID token has no subject", http.StatusUnauthorized)
			return
		}

		sess.Set(middleware.SessionUserID, claims.Subject())
		sess.Set(middleware.SessionUserEmail, claims.Email())
		sess.Set(middleware.SessionUserName, claims.DisplayName())
		sess.Set(middleware.SessionUserRoles, claims.Roles(auth.RolesClaim()))

		// Clear the state from session
		sess.Delete("state")

		redirect, _ := sess.Get(middleware.SessionRedirect).(string)
		sess.Delete(middleware.SessionRedirect)
		if redirect == "" {
			redirect = "/dashboard"
		}

		http.Redirect(w, r, redirect, http.StatusSeeOther)
	}
}

// Logout clears the session
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.GetSession(r)
	for _, key := range []string{
		middleware.SessionUserID,
		middleware.SessionUserEmail,
		middleware.SessionUserName,
		middleware.SessionUserRoles,
	} {
		sess.Delete(key)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
