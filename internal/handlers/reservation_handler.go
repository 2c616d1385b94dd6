package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/authz"
	"quadralivre/internal/middleware"
	"quadralivre/internal/models"
	"quadralivre/internal/repository"
)

type ReservationHandler struct {
	repo          repository.ReservationRepository
	notifications repository.NotificationRepository
	v             *validator.Validate
}

func NewReservationHandler(db *sql.DB) *ReservationHandler {
	return &ReservationHandler{
		repo:          repository.NewReservationRepository(db),
		notifications: repository.NewNotificationRepository(db),
		v:             validator.New(),
	}
}

// List returns the reservations visible to the caller: own bookings
// for a user, bookings on owned venues for an owner, everything for an
// admin. Elapsed active reservations are completed first so ratings
// unlock without a background job.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, err := h.repo.CompleteElapsed(r.Context()); err != nil {
		log.Printf("failed to complete elapsed reservations: %v", err)
	}

	filter := repository.ReservationFilter{}
	caller := middleware.UserID(r.Context())
	switch middleware.RoleOf(r.Context()) {
	case models.RoleAdmin:
	case models.RoleOwner:
		filter.OwnerID = caller
	default:
		filter.UserID = caller
	}

	if ids, err := parseVenueIDs(r); err != nil {
		writeAppError(w, err)
		return
	} else {
		filter.VenueIDs = ids
	}

	reservations, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservations)
}

// @Tags Reservas
// @Summary Book a venue time slot
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateReservationRequest true "Reservation data"
// @Success 201 {object} models.Reservation
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/reservas [post]
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleOf(r.Context())
	caller := middleware.UserID(r.Context())
	if !authz.Permit(role, authz.OpCreateReservation, "", caller) {
		writeAppError(w, apperrors.Forbidden("forbidden", "Apenas usuários podem criar reservas"))
		return
	}

	var req models.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Corpo da requisição inválido")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if err := validateSlot(req.Date, req.StartTime, req.EndTime); err != nil {
		writeAppError(w, err)
		return
	}

	res := &models.Reservation{
		VenueID:   req.VenueID,
		UserID:    caller,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	venueOwnerID, err := h.repo.Create(r.Context(), res)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.notify(r, venueOwnerID, models.NotifReservationCreated,
		fmt.Sprintf("Nova reserva em %s das %s às %s.", res.Date, res.StartTime, res.EndTime))
	writeJSON(w, http.StatusCreated, res)
}

// Cancel is allowed to the reservation's user, the venue's owner, or
// an admin, and only while the reservation is still active.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := reservationID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	res, venueOwnerID, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	role := middleware.RoleOf(r.Context())
	caller := middleware.UserID(r.Context())
	matched := res.UserID
	if caller == venueOwnerID {
		matched = venueOwnerID
	}
	if !authz.Permit(role, authz.OpCancelReservation, matched, caller) {
		writeAppError(w, apperrors.Forbidden("forbidden", "Você não pode cancelar esta reserva"))
		return
	}

	if err := h.repo.Cancel(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	// Tell the other side: owner-initiated cancels notify the booking
	// user, user-initiated cancels notify the venue owner.
	recipient := venueOwnerID
	if caller != res.UserID {
		recipient = res.UserID
	}
	h.notify(r, recipient, models.NotifReservationCancelled,
		fmt.Sprintf("A reserva de %s (%s às %s) foi cancelada.", res.Date, res.StartTime, res.EndTime))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reserva cancelada"})
}

// Rate records the booking user's 1-5 rating, once, after completion.
func (h *ReservationHandler) Rate(w http.ResponseWriter, r *http.Request) {
	id, err := reservationID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	var req models.RateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Corpo da requisição inválido")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", "Avaliação deve ser de 1 a 5")
		return
	}

	res, _, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	role := middleware.RoleOf(r.Context())
	caller := middleware.UserID(r.Context())
	if !authz.Permit(role, authz.OpRateReservation, res.UserID, caller) {
		writeAppError(w, apperrors.Forbidden("forbidden", "Apenas quem reservou pode avaliar"))
		return
	}
	if res.Rating != nil {
		writeAppError(w, apperrors.Conflict("already_rated", "Reserva já avaliada"))
		return
	}
	if res.Status != models.ReservationCompleted {
		writeAppError(w, apperrors.Conflict("not_completed", "Apenas reservas concluídas podem ser avaliadas"))
		return
	}

	if err := h.repo.Rate(r.Context(), id, req.Rating); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Avaliação registrada", "avaliacao": req.Rating})
}

func (h *ReservationHandler) notify(r *http.Request, userID string, kind models.NotificationKind, message string) {
	n := &models.Notification{UserID: userID, Kind: kind, Message: message}
	if err := h.notifications.Create(r.Context(), n); err != nil {
		log.Printf("failed to create notification for %s: %v", userID, err)
	}
}

func reservationID(r *http.Request) (int, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid_request", "ID de reserva inválido")
	}
	return id, nil
}

func parseVenueIDs(r *http.Request) ([]int, error) {
	raw := r.URL.Query().Get("local_id")
	if raw == "" {
		raw = r.URL.Query().Get("local_ids")
	}
	if raw == "" {
		return nil, nil
	}

	var ids []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, apperrors.Validation("invalid_request", "Filtro de local inválido")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// validateSlot checks the calendar date and the [start,end) time range.
func validateSlot(date, start, end string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return apperrors.Validation("invalid_date", "Data deve estar no formato AAAA-MM-DD")
	}
	for _, t := range []string{start, end} {
		if len(t) != 5 {
			return apperrors.Validation("invalid_time", "Horário deve estar no formato HH:MM")
		}
		if _, err := time.Parse("15:04", t); err != nil {
			return apperrors.Validation("invalid_time", "Horário deve estar no formato HH:MM")
		}
	}
	if start >= end {
		return apperrors.Validation("invalid_range", "Horário inicial deve ser antes do final")
	}
	return nil
}
