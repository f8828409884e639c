package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigchunguss42069/sketch-time-tool/internal/storage"
)

type contextKey string

const identityKey contextKey = "identity"

// Claims carry the caller identity issued by the login service.
type Claims struct {
	WorkerID string `json:"workerId"`
	TeamID   string `json:"teamId"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func GenerateToken(secret string, id storage.Identity, expiration time.Duration) (string, error) {
	claims := &Claims{
		WorkerID: id.WorkerID,
		TeamID:   id.TeamID,
		IsAdmin:  id.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.WorkerID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.WorkerID == "" || claims.TeamID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// BearerAuth resolves the Authorization header into a storage.Identity.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				requireAuth(w)
				return
			}

			claims, err := ValidateToken(secret, strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="expired"`)
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				requireAuth(w)
				return
			}

			id := storage.Identity{WorkerID: claims.WorkerID, TeamID: claims.TeamID, IsAdmin: claims.IsAdmin}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin must run after BearerAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			requireAuth(w)
			return
		}
		if !id.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithIdentity(ctx context.Context, id storage.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (storage.Identity, bool) {
	id, ok := ctx.Value(identityKey).(storage.Identity)
	return id, ok
}

func requireAuth(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="timesheet"`)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
