package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"quadralivre/internal/models"
)

func venueRow(id int, ownerID, status string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "user_id", "nome", "descricao", "endereco", "esporte", "valor_hora",
		"disponibilidade", "telefone", "fotos", "status_aprovacao", "created_at", "updated_at",
	}).AddRow(
		id, ownerID, "Quadra Central", "Quadra coberta", "Rua A, 100", "futsal", 50.0,
		"Seg a Sex, 8h-22h", "11999990000", "{}", status, now, now,
	)
}

func TestCreateVenueStartsPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO locais").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	h := NewVenueHandler(db, nil)

	req := authed(postJSON(t, "/api/locais", map[string]any{
		"nome": "Quadra Central", "endereco": "Rua A, 100",
		"esporte": "futsal", "valor_hora": 50.0,
	}), "o1", models.RoleOwner)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["status_aprovacao"] != "pendente" {
		t.Fatalf("expected new venue pendente, got %v", resp["status_aprovacao"])
	}
	if resp["user_id"] != "o1" {
		t.Fatalf("expected owner o1, got %v", resp["user_id"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCreateVenueForbiddenForAdmin(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	h := NewVenueHandler(db, nil)

	req := authed(postJSON(t, "/api/locais", map[string]any{
		"nome": "Quadra Central", "endereco": "Rua A, 100", "esporte": "futsal",
	}), "a1", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestGetHidesPendingVenueFromStrangers(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, nome").
		WithArgs(3).
		WillReturnRows(venueRow(3, "o1", "pendente"))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/locais/3", nil)
	req = authed(withURLParam(req, "id", "3"), "u2", models.RoleUser)
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestGetShowsPendingVenueToItsOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, nome").
		WithArgs(3).
		WillReturnRows(venueRow(3, "o1", "pendente"))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/locais/3", nil)
	req = authed(withURLParam(req, "id", "3"), "o1", models.RoleOwner)
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateVenueByOtherOwnerForbidden(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, nome").
		WithArgs(3).
		WillReturnRows(venueRow(3, "o1", "aprovado"))

	h := NewVenueHandler(db, nil)

	req := postJSON(t, "/api/locais/3", map[string]any{"nome": "Outro nome"})
	req = authed(withURLParam(req, "id", "3"), "o2", models.RoleOwner)
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateVenuePartialFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, nome").
		WithArgs(3).
		WillReturnRows(venueRow(3, "o1", "aprovado"))
	mock.ExpectQuery("UPDATE locais").
		WillReturnRows(venueRow(3, "o1", "aprovado"))

	h := NewVenueHandler(db, nil)

	req := postJSON(t, "/api/locais/3", map[string]any{"descricao": "Reformada"})
	req = authed(withURLParam(req, "id", "3"), "o1", models.RoleOwner)
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApproveNotifiesOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE locais").
		WillReturnRows(venueRow(3, "o1", "aprovado"))
	mock.ExpectQuery("INSERT INTO notificacoes").
		WithArgs("o1", string(models.NotifVenueApproved), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/locais/3/aprovar", nil)
	req = authed(withURLParam(req, "id", "3"), "a1", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Approve(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["status_aprovacao"] != "aprovado" {
		t.Fatalf("expected aprovado, got %v", resp["status_aprovacao"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestApproveDecidedVenueConflicts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE locais").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/locais/3/aprovar", nil)
	req = authed(withURLParam(req, "id", "3"), "a1", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Approve(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "not_pending" {
		t.Fatalf("expected not_pending, got %v", resp["error"])
	}
}

func TestApproveMissingVenueNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE locais").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/locais/99/aprovar", nil)
	req = authed(withURLParam(req, "id", "99"), "a1", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Approve(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestRejectDeletesAndNotifies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("DELETE FROM locais").
		WillReturnRows(venueRow(3, "o1", "pendente"))
	mock.ExpectQuery("INSERT INTO notificacoes").
		WithArgs("o1", string(models.NotifVenueRejected), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/locais/3/reprovar", nil)
	req = authed(withURLParam(req, "id", "3"), "a1", models.RoleAdmin)
	w := httptest.NewRecorder()
	h.Reject(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListApprovedIsPaginated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, user_id, nome").
		WithArgs(20, 0).
		WillReturnRows(venueRow(1, "o1", "aprovado"))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	h := NewVenueHandler(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/locais", nil)
	w := httptest.NewRecorder()
	h.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != 1.0 {
		t.Fatalf("expected total 1, got %v", resp["total"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
