package daemon

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"hireline/internal/authz"
	"hireline/internal/logging"
)

// authMiddleware returns a middleware that validates bearer tokens.
// If token is empty, no authentication is required and all requests pass
// through. Otherwise requests must carry "Authorization: Bearer <token>".
func authMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != token {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestContextMiddleware stamps a fresh correlation identifier, and the
// acting identity when the request carries one, onto the request context so
// every log line downstream carries the same request fields.
func requestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithCorrelationID(r.Context(), uuid.NewString())
		if actor, ok := actorFromRequest(r); ok {
			ctx = logging.WithActorID(ctx, actor.ID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFromRequest reads the acting user's identity from trusted headers.
// Identity verification happens upstream; the daemon only needs the claims.
func actorFromRequest(r *http.Request) (authz.Actor, bool) {
	id := strings.TrimSpace(r.Header.Get("X-Actor-Id"))
	roleRaw := strings.TrimSpace(r.Header.Get("X-Actor-Role"))
	if id == "" || roleRaw == "" {
		return authz.Actor{}, false
	}
	role, ok := authz.ParseRole(roleRaw)
	if !ok {
		return authz.Actor{}, false
	}
	return authz.Actor{
		ID:        id,
		Role:      role,
		CompanyID: strings.TrimSpace(r.Header.Get("X-Actor-Company")),
	}, true
}
