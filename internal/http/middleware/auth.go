// Package middleware holds the HTTP middleware placed in front of the
// resource handlers: bearer-token authentication, per-client rate
// limiting and request logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/school-api/internal/auth"
	"github.com/aanand-mishra/school-api/internal/utils/response"
)

const (
	MsgAuthMissing  = "Authorization header missing"
	MsgTokenInvalid = "Invalid or expired token"
)

type contextKey string

const claimsKey = contextKey("claims")

// TokenParser verifies a raw bearer token.
type TokenParser interface {
	ParseToken(raw string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token.
//
//	no Authorization header       401 { "message": "Authorization header missing" }
//	token missing, bad or expired 403 { "message": "Invalid or expired token" }
//
// On success the decoded claims are available through ClaimsFrom.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := zerolog.Ctx(r.Context())

			header := r.Header.Get("Authorization")
			if header == "" {
				log.Warn().Msg(MsgAuthMissing)
				response.WriteJSON(w, http.StatusUnauthorized, response.Msg(MsgAuthMissing))
				return
			}

			// The token is the second space-separated segment: "Bearer <jwt>".
			var raw string
			if parts := strings.Split(header, " "); len(parts) > 1 {
				raw = parts[1]
			}

			claims, err := tokens.ParseToken(raw)
			if err != nil {
				log.Warn().Err(err).Msg("rejected token")
				response.WriteJSON(w, http.StatusForbidden, response.Msg(MsgTokenInvalid))
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the claims Authenticate attached to ctx.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}
