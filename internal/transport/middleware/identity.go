package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-backend/pkg/ctxutil"
)

// Identity returns middleware that reads the authenticated user ID from a
// trusted header set by the gateway in front of this service. A missing
// header leaves the request anonymous; a malformed one is rejected so a
// misconfigured gateway fails loudly instead of silently dropping identity.
func Identity(header string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(header)
			if raw == "" {
				next.ServeHTTP(w, r) // Anonymous
				return
			}

			userID, err := uuid.Parse(raw)
			if err != nil || userID == uuid.Nil {
				http.Error(w, "invalid user identity", http.StatusUnauthorized)
				return
			}

			ctx := ctxutil.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
