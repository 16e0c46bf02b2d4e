package middleware

import (
	"net/http"
	"strings"

	"bugtracker/internal/utils"

	"github.com/rs/zerolog"
)

// WithAuth puts the actor from a valid bearer token (or "session" cookie) in
// the request context. Requests without one pass through; RequireAuth decides.
func WithAuth(log zerolog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tok string
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			} else if c, err := r.Cookie("session"); err == nil {
				tok = c.Value
			}

			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := utils.ParseJWT(secret, tok)
			if err != nil {
				log.Debug().Err(err).Msg("rejected token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(utils.WithActor(r.Context(), claims.Actor())))
		})
	}
}
