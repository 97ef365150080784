// Package auth verifies API session tokens and exposes the authenticated
// caller to downstream handlers through the request context.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

// AuthUser is the authenticated caller extracted from the session token
type AuthUser struct {
	UserID       uuid.UUID `json:"user_uuid,omitempty"`
	Username     string    `json:"username,omitempty"`
	DomainID     uuid.UUID `json:"domain_uuid,omitempty"`
	GroupLevel   int       `json:"group_level,omitempty"`
	Capabilities []string  `json:"permissions,omitempty"`
}

func (u AuthUser) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("user", u.Username),
		slog.String("domain", u.DomainID.String()),
	)
}

// contextKey is a value for use with context.WithValue. It's used as
// a pointer so it fits in an interface{} without allocation.
type contextKey struct {
	name string
}

func (k *contextKey) String() string {
	return "auth context value " + k.name
}

var AuthUserKey = &contextKey{"AuthUser"}

// WithAuthUser returns a context carrying the authenticated caller
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, AuthUserKey, user)
}

// FromContext returns the authenticated caller, if any
func FromContext(ctx context.Context) (*AuthUser, bool) {
	user, ok := ctx.Value(AuthUserKey).(*AuthUser)
	return user, ok
}

// NewJWTAuth creates the token verifier for the configured signing secret
func NewJWTAuth(secret string) *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(secret), nil)
}

// Verifier extracts and verifies the session token from the request
func Verifier(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return jwtauth.Verifier(ja)
}

// loadFromMap round-trips a claims map through JSON into a typed struct
func loadFromMap[T any](m map[string]interface{}, c *T) error {
	data, err := json.Marshal(m)
	if err == nil {
		err = json.Unmarshal(data, c)
	}
	return err
}

// Authenticator rejects requests without a valid session token and stores
// the AuthUser in the request context. The error body follows the API's
// JSON envelope rather than jwtauth's plain-text default.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			unauthorized(w)
			return
		}

		authUser := new(AuthUser)
		if err := loadFromMap(claims, authUser); err != nil {
			slog.Error("Failed to parse session claims", "err", err)
			unauthorized(w)
			return
		}
		if authUser.UserID == uuid.Nil && authUser.Username == "" {
			unauthorized(w)
			return
		}

		ctx := WithAuthUser(r.Context(), authUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": "Unauthorized - Authentication required",
	})
}
