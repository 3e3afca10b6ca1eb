package middleware

import (
	"context"
	"net/http"

	authcore "github.com/holasoymalva/authcore"
)

// RequirePermission verifies the bearer token and requires that its role
// grants perm. Authentication failures reject with 401, permission
// denials with 403.
func RequirePermission(engine *authcore.Engine, perm string) func(http.Handler) http.Handler {
	return requireWith(engine, func(role string) error {
		return engine.CheckPermission(role, perm)
	})
}

// RequireAllPermissions is RequirePermission over a permission set; every
// listed permission must be granted.
func RequireAllPermissions(engine *authcore.Engine, perms ...string) func(http.Handler) http.Handler {
	return requireWith(engine, func(role string) error {
		return engine.CheckAllPermissions(role, perms)
	})
}

func requireWith(engine *authcore.Engine, check func(role string) error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(engine, w, r)
			if !ok {
				return
			}

			if err := check(claims.Role); err != nil {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
