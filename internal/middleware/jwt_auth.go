package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"quadralivre/internal/models"
	"quadralivre/internal/repository"
)

type ctxKey string

const (
	CtxUserID    ctxKey = "user_id"
	CtxRole      ctxKey = "role"
	CtxSessionID ctxKey = "session_id"
)

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"auth_error","message":"` + message + `"}`))
}

// JWTAuth validates the bearer token signature and claims, then checks
// the session row so a logged-out token is rejected even before its
// exp. Identity, role and session id land in the request context.
func JWTAuth(secret string, sessions repository.SessionRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, "Credencial ausente")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeAuthError(w, "Credencial inválida")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(30*time.Second))
			if err != nil || token == nil || !token.Valid {
				writeAuthError(w, "Credencial inválida ou expirada")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeAuthError(w, "Credencial inválida")
				return
			}

			sub, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			jti, _ := claims["jti"].(string)
			if sub == "" || jti == "" || !models.ValidRole(role) {
				writeAuthError(w, "Credencial inválida")
				return
			}

			active, err := sessions.IsActive(r.Context(), jti)
			if err != nil {
				http.Error(w, "Erro interno", http.StatusInternalServerError)
				return
			}
			if !active {
				writeAuthError(w, "Sessão encerrada")
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, sub)
			ctx = context.WithValue(ctx, CtxRole, models.Role(role))
			ctx = context.WithValue(ctx, CtxSessionID, jti)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTAuth authenticates when a bearer token is present and
// valid, and otherwise lets the request through anonymously. Used on
// public reads where an owner or admin sees more than a visitor.
func OptionalJWTAuth(secret string, sessions repository.SessionRepository) func(http.Handler) http.Handler {
	auth := JWTAuth(secret, sessions)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth(next).ServeHTTP(w, r)
		})
	}
}

// RequireRoles gates a route to the given roles. Runs after JWTAuth.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(CtxRole).(models.Role)
			if !ok {
				writeAuthError(w, "Credencial ausente")
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden","message":"Operação não permitida para este perfil"}`))
		})
	}
}

// UserID returns the authenticated user id from the request context.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}

// RoleOf returns the authenticated role from the request context.
func RoleOf(ctx context.Context) models.Role {
	role, _ := ctx.Value(CtxRole).(models.Role)
	return role
}

// SessionID returns the session (jti) from the request context.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(CtxSessionID).(string)
	return id
}
