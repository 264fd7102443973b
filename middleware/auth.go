package middleware

import (
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/inkwell/userctx"
)

// Session keys written by the auth controller
const (
	SessionUserID    = "user_id"
	SessionUserEmail = "user_email"
	SessionUserName  = "user_nickname"
	SessionUserRoles = "user_roles"
	SessionRedirect  = "redirect_after_login"
)

// RequireAuth ensures the user is authenticated
// If not authenticated, redirects to /login and stores the intended destination
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)
		userID, _ := sess.Get(SessionUserID).(string)

		if userID == "" {
			// Store the intended destination for redirect after login
			sess.Set(SessionRedirect, r.URL.Path)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		email, _ := sess.Get(SessionUserEmail).(string)
		roles, _ := sess.Get(SessionUserRoles).([]string)

		// Add user details to request context for use in handlers
		ctx := userctx.SetUserID(r.Context(), userID)
		ctx = userctx.SetUserEmail(ctx, email)
		ctx = userctx.SetRoles(ctx, roles)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// StaticUser runs every request as the given user. It replaces RequireAuth
// when authentication is disabled.
func StaticUser(email string, roles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := userctx.SetUserID(r.Context(), email)
			ctx = userctx.SetUserEmail(ctx, email)
			ctx = userctx.SetRoles(ctx, roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
