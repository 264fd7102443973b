// Package security decides whether the request user may reach a component.
package security

import (
	"context"
	"net/http"
	"reflect"

	"github.com/blogem/inkwell/userctx"
)

// ComponentVerifier reports whether the user in ctx may use the component
// of type t.
type ComponentVerifier interface {
	IsAllowed(ctx context.Context, t reflect.Type) bool
}

// Secured is implemented by components that need a role.
type Secured interface {
	RequiredRoles() []string
}

var securedType = reflect.TypeOf((*Secured)(nil)).Elem()

// RoleVerifier allows components that are not Secured, and Secured ones
// when the user holds any of their roles. An empty role list only requires
// a signed-in user.
type RoleVerifier struct{}

func (RoleVerifier) IsAllowed(ctx context.Context, t reflect.Type) bool {
	if t == nil || !t.Implements(securedType) {
		return true
	}

	roles := requiredRoles(t)
	if len(roles) == 0 {
		return userctx.GetUserID(ctx) != ""
	}
	for _, role := range roles {
		if userctx.HasRole(ctx, role) {
			return true
		}
	}
	return false
}

// requiredRoles calls RequiredRoles on the zero value of t.
func requiredRoles(t reflect.Type) []string {
	var v reflect.Value
	if t.Kind() == reflect.Pointer {
		v = reflect.New(t.Elem())
	} else {
		v = reflect.Zero(t)
	}
	return v.Interface().(Secured).RequiredRoles()
}

// Protect returns middleware that answers 403 unless verifier allows the
// type of component.
func Protect(verifier ComponentVerifier, component any) func(http.Handler) http.Handler {
	t := reflect.TypeOf(component)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.IsAllowed(r.Context(), t) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
