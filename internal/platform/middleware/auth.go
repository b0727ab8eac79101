package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medfund/pkg/requestcontext"
)

// AdminValidator verifies admin bearer tokens for administrative routes
// (case verification, lifecycle operations, invoice advancement). Identity
// management itself is an external collaborator; this only checks that a
// token was minted with the shared signing key.
type AdminValidator struct {
	signingKey []byte
}

// NewAdminValidator creates a validator over the shared HS256 signing key.
func NewAdminValidator(signingKey string) *AdminValidator {
	return &AdminValidator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a token, returning the actor subject.
func (v *AdminValidator) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token missing subject")
	}
	return sub, nil
}

// IssueToken mints a short-lived admin token. Used by operational tooling
// and tests; the server itself never issues tokens to end users.
func (v *AdminValidator) IssueToken(actorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": actorID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString(v.signingKey)
}

// RequireAdmin rejects requests without a valid admin bearer token and puts
// the actor ID into the request context.
func RequireAdmin(validator *AdminValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				unauthorized(w)
				return
			}

			actorID, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "rejected admin token",
					"error", err.Error(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w)
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"valid admin token required"}`))
}
