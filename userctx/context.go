package userctx

import "context"

// Context key type
type contextKey string

const userEmailKey contextKey = "user_email"
const userRolesKey contextKey = "user_roles"
const UserIDKey contextKey = "user_id"

// SetUserEmail adds user email to request context
func SetUserEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userEmailKey, email)
}

// GetUserEmail retrieves user email from request context
func GetUserEmail(ctx context.Context) string {
	email, ok := ctx.Value(userEmailKey).(string)
	if !ok || email == "" {
		return "anonymous"
	}
	return email
}

// SetUserID adds user ID to request context
func SetUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}

// GetUserID retrieves user ID from request context
func GetUserID(ctx context.Context) string {
	if userID := ctx.Value(UserIDKey); userID != nil {
		if id, ok := userID.(string); ok {
			return id
		}
	}
	return ""
}

// SetRoles adds the user's roles to request context
func SetRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, userRolesKey, roles)
}

// GetRoles retrieves the user's roles from request context
func GetRoles(ctx context.Context) []string {
	roles, _ := ctx.Value(userRolesKey).([]string)
	return roles
}

// HasRole reports whether the request user holds role
func HasRole(ctx context.Context, role string) bool {
	for _, r := range GetRoles(ctx) {
		if r == role {
			return true
		}
	}
	return false
}
