package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/middleware"
	"quadralivre/internal/repository"
)

type NotificationHandler struct {
	repo repository.NotificationRepository
}

func NewNotificationHandler(db *sql.DB) *NotificationHandler {
	return &NotificationHandler{repo: repository.NewNotificationRepository(db)}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())

	notifications, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	unread, err := h.repo.CountUnread(r.Context(), userID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"notificacoes": notifications,
		"nao_lidas":    unread,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		writeAppError(w, apperrors.Validation("invalid_request", "ID de notificação inválido"))
		return
	}

	if err := h.repo.MarkRead(r.Context(), id, middleware.UserID(r.Context())); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.MarkAllRead(r.Context(), middleware.UserID(r.Context())); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
