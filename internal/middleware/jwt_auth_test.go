package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"quadralivre/internal/models"
)

const testSecret = "dev"

type fakeSessions struct {
	active map[string]bool
}

func (f *fakeSessions) Create(ctx context.Context, s *models.Session) error { return nil }

func (f *fakeSessions) IsActive(ctx context.Context, id string) (bool, error) {
	return f.active[id], nil
}

func (f *fakeSessions) Revoke(ctx context.Context, id string) error {
	delete(f.active, id)
	return nil
}

func signToken(t *testing.T, sub, role, jti string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"jti":  jti,
		"iat":  time.Now().Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func echoIdentity(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", UserID(r.Context()))
		w.Header().Set("X-Role", string(RoleOf(r.Context())))
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuthPutsIdentityInContext(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{"s1": true}}
	handler := JWTAuth(testSecret, sessions)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "owner", "s1", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if w.Header().Get("X-User") != "u1" || w.Header().Get("X-Role") != "owner" {
		t.Fatalf("identity not propagated: user=%q role=%q",
			w.Header().Get("X-User"), w.Header().Get("X-Role"))
	}
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	handler := JWTAuth(testSecret, &fakeSessions{active: map[string]bool{}})(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestJWTAuthRejectsRevokedSession(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	handler := JWTAuth(testSecret, sessions)(echoIdentity(t))

	// Token is well signed and unexpired, but its session is gone.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "user", "s-revoked", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{"s1": true}}
	handler := JWTAuth(testSecret, sessions)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "user", "s1", time.Now().Add(-time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{"s1": true}}
	handler := JWTAuth("other-secret", sessions)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "user", "s1", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", w.Code)
	}
}

func TestJWTAuthRejectsUnknownRole(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{"s1": true}}
	handler := JWTAuth(testSecret, sessions)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "u1", "superuser", "s1", time.Now().Add(time.Hour)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown role, got %d", w.Code)
	}
}

func TestOptionalJWTAuthAllowsAnonymous(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	handler := OptionalJWTAuth(testSecret, sessions)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected anonymous pass-through, got %d", w.Code)
	}
	if w.Header().Get("X-User") != "" {
		t.Fatalf("expected empty identity, got %q", w.Header().Get("X-User"))
	}
}

func TestOptionalJWTAuthStillRejectsBadToken(t *testing.T) {
	sessions := &fakeSessions{active: map[string]bool{}}
	handler := OptionalJWTAuth(testSecret, sessions)(echoIdentity(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for present but invalid token, got %d", w.Code)
	}
}

func TestRequireRolesBlocksOtherRoles(t *testing.T) {
	handler := RequireRoles(models.RoleAdmin)(echoIdentity(t))

	ctx := context.WithValue(context.Background(), CtxUserID, "u1")
	ctx = context.WithValue(ctx, CtxRole, models.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
}

func TestRequireRolesAdmits(t *testing.T) {
	handler := RequireRoles(models.RoleAdmin)(echoIdentity(t))

	ctx := context.WithValue(context.Background(), CtxUserID, "a1")
	ctx = context.WithValue(ctx, CtxRole, models.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
}
