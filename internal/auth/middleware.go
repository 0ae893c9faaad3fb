package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/registration-backend/internal/apperror"
)

type contextKey string

const operatorKey contextKey = "operator"

// ListGuard decides whether a request may read the full account listing.
//
// It sits at the HTTP boundary so the gateway contract never changes when
// the policy does. Authorize returns nil to allow, or an apperror wrapping
// ErrUnauthorized (no or bad credentials) or ErrForbidden (valid
// credentials, wrong scope). On success it may return a request carrying
// extra context values.
type ListGuard interface {
	Authorize(r *http.Request) (*http.Request, error)
}

// AllowAll is the open policy: anyone may list. It matches how the
// endpoint has always behaved, and the server logs a warning when it is used.
type AllowAll struct{}

func (AllowAll) Authorize(r *http.Request) (*http.Request, error) {
	return r, nil
}

// BearerGuard admits requests carrying a valid operator JWT with the
// registrations:read scope.
type BearerGuard struct {
	tokens *TokenService
}

// NewBearerGuard creates a guard that verifies tokens with ts.
func NewBearerGuard(ts *TokenService) *BearerGuard {
	return &BearerGuard{tokens: ts}
}

func (g *BearerGuard) Authorize(r *http.Request) (*http.Request, error) {
	raw, ok := bearerToken(r)
	if !ok {
		return r, apperror.Unauthorized("bearer token required")
	}

	claims, err := g.tokens.Validate(raw)
	if err != nil {
		return r, apperror.Unauthorized("invalid or expired token")
	}
	if !claims.HasScope(ScopeListAccounts) {
		return r, apperror.Forbidden("token lacks scope " + ScopeListAccounts)
	}

	ctx := context.WithValue(r.Context(), operatorKey, claims.Subject)
	return r.WithContext(ctx), nil
}

// Guard wraps a handler with guard. Denied requests get a JSON body in the
// same {"success":false,"message":...} shape as the other endpoints.
func Guard(guard ListGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, err := guard.Authorize(r)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, apperror.ErrForbidden) {
					status = http.StatusForbidden
				} else {
					w.Header().Set("WWW-Authenticate", `Bearer realm="registrations"`)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": err.Error(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OperatorFromContext returns the operator a BearerGuard admitted, if any.
func OperatorFromContext(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operatorKey).(string)
	return op, ok && op != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is case-insensitive per RFC 6750.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
