package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"civiclink/internal/access"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/requestcontext"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims are the claims the middleware needs from a token.
type TokenClaims struct {
	UserID id.UserID
	Role   string
	JTI    string
}

// IdentityResolver loads the caller's current role, status and affiliations.
// Resolving per request means a suspension takes effect before token expiry.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID id.UserID) (*access.Identity, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if errDesc == "" {
		_, _ = w.Write(fmt.Appendf(nil, `{"error":%q}`, errCode))
		return
	}
	_, _ = w.Write(fmt.Appendf(nil, `{"error":%q,"error_description":%q}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token for a resolvable user.
func RequireAuth(validator TokenValidator, resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(validator, resolver, logger, true)
}

// OptionalAuth resolves the caller when a token is present and passes
// anonymous requests through untouched. An invalid token is still rejected.
func OptionalAuth(validator TokenValidator, resolver IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return authenticate(validator, resolver, logger, false)
}

func authenticate(validator TokenValidator, resolver IdentityResolver, logger *slog.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			identity, err := resolver.ResolveIdentity(ctx, claims.UserID)
			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					logger.WarnContext(ctx, "unauthorized access - unknown subject",
						"user_id", claims.UserID,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}
				logger.ErrorContext(ctx, "failed to resolve identity",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "")
				return
			}

			ctx = requestcontext.WithUserID(ctx, identity.UserID)
			ctx = access.WithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
