package middleware

import (
	"context"
	"net/http"
	"strings"

	authcore "github.com/holasoymalva/authcore"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified claims Guard stored for this
// request.
func ClaimsFromContext(ctx context.Context) (authcore.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(authcore.Claims)
	return claims, ok
}

// Guard verifies the request's bearer token and stores its claims in the
// request context. Requests without a valid token are rejected with 401.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(engine, w, r)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(engine *authcore.Engine, w http.ResponseWriter, r *http.Request) (authcore.Claims, bool) {
	if engine == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return authcore.Claims{}, false
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return authcore.Claims{}, false
	}

	claims, err := engine.VerifyToken(token)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return authcore.Claims{}, false
	}

	return claims, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
