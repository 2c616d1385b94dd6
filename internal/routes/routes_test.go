package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"quadralivre/internal/config"
)

func testRouter(t *testing.T) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{JWTSecret: "dev", JWTExpiresInSeconds: 3600}
	return SetupRoutes(db, cfg, nil), mock
}

func TestRootEndpoint(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] == nil {
		t.Fatalf("expected welcome message, got %v", resp)
	}
}

func TestHealthReportsDatabase(t *testing.T) {
	router, mock := testRouter(t)
	mock.ExpectPing()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status"] != "ok" {
		t.Fatalf("expected healthy status, got %v", resp)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := testRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/locais/meus"},
		{http.MethodGet, "/api/reservas"},
		{http.MethodGet, "/api/notificacoes"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/api/locais/pendentes"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestPublicVenueListingNeedsNoToken(t *testing.T) {
	router, mock := testRouter(t)

	mock.ExpectQuery("SELECT id, user_id, nome").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "nome", "descricao", "endereco", "esporte", "valor_hora",
			"disponibilidade", "telefone", "fotos", "status_aprovacao", "created_at", "updated_at",
		}))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	req := httptest.NewRequest(http.MethodGet, "/api/locais", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
}
