package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/ender-admin-auth/internal/models"
	"github.com/rs/zerolog/log"
)

// TokenHeader carries the bearer token on login responses and protected requests.
const TokenHeader = "x-auth-token"

type contextKey string

// AdminKey is the context key for the authenticated admin.
const AdminKey = contextKey("admin")

// SessionVerifier resolves a raw token to the admin it belongs to.
// Rejections are reported as *AuthError; any other error is unexpected.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (models.Admin, error)
}

// Gate guards protected routes.
type Gate struct {
	verifier SessionVerifier
}

// NewGate creates a Gate backed by verifier.
func NewGate(verifier SessionVerifier) *Gate {
	return &Gate{verifier: verifier}
}

// GateFailure is the body written when the gate rejects a request.
// JWTExpired is set on every failure so clients always re-authenticate.
type GateFailure struct {
	Success    bool   `json:"success"`
	Result     any    `json:"result"`
	Message    string `json:"message"`
	JWTExpired bool   `json:"jwtExpired"`
	Reason     string `json:"reason,omitempty"`
}

// Middleware admits requests carrying a valid token for a logged-in admin.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, err := g.verifier.VerifySession(r.Context(), TokenFromRequest(r))
		if err != nil {
			var authErr *AuthError
			if errors.As(err, &authErr) {
				log.Debug().Str("reason", authErr.Reason).Str("path", r.URL.Path).Msg("Request rejected by auth gate")
				writeFailure(w, http.StatusUnauthorized, GateFailure{Message: authErr.Message, JWTExpired: true, Reason: authErr.Reason})
				return
			}
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Auth gate failed to verify session")
			writeFailure(w, http.StatusInternalServerError, GateFailure{Message: err.Error(), JWTExpired: true})
			return
		}

		ctx := context.WithValue(r.Context(), AdminKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest reads the token header, falling back to an
// "Authorization: Bearer" header.
func TokenFromRequest(r *http.Request) string {
	if tok := strings.TrimSpace(r.Header.Get(TokenHeader)); tok != "" {
		return tok
	}
	authHeader := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(tok)
	}
	return ""
}

// AdminFromContext returns the admin attached by the gate.
func AdminFromContext(ctx context.Context) (models.Admin, bool) {
	admin, ok := ctx.Value(AdminKey).(models.Admin)
	return admin, ok
}

func writeFailure(w http.ResponseWriter, status int, body GateFailure) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode auth gate response")
	}
}
