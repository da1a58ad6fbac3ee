package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleWorker = "worker"
	RoleOwner  = "owner"
)

type ctxKey int

const (
	ctxKeyWorkerID ctxKey = iota
	ctxKeyRole
)

// Claims carried in the bearer token: sub is the worker id, role is
// worker or owner.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the Authorization bearer token and puts the caller identity
// on the request context. The domain layer never reads it implicitly;
// handlers pass workerID down as an explicit argument.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("Authorization")
			if !strings.HasPrefix(raw, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
				return
			}
			claims := &Claims{}
			token, err := jwt.ParseWithClaims(strings.TrimPrefix(raw, "Bearer "), claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.Subject == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyWorkerID, claims.Subject)
			ctx = context.WithValue(ctx, ctxKeyRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner gates owner-only routes; workers get 403.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Role(r.Context()) != RoleOwner {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "owner role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WorkerID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyWorkerID).(string)
	return v
}

func Role(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRole).(string)
	return v
}
