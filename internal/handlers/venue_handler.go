package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"quadralivre/internal/apperrors"
	"quadralivre/internal/authz"
	"quadralivre/internal/middleware"
	"quadralivre/internal/models"
	"quadralivre/internal/repository"
	"quadralivre/internal/services"
)

type VenueHandler struct {
	repo          repository.VenueRepository
	notifications repository.NotificationRepository
	uploader      services.PhotoUploader
	v             *validator.Validate
}

func NewVenueHandler(db *sql.DB, uploader services.PhotoUploader) *VenueHandler {
	return &VenueHandler{
		repo:          repository.NewVenueRepository(db),
		notifications: repository.NewNotificationRepository(db),
		uploader:      uploader,
		v:             validator.New(),
	}
}

// @Tags Locais
// @Summary List approved venues
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/locais [get]
func (h *VenueHandler) List(w http.ResponseWriter, r *http.Request) {
	pagination, err := parsePaginationParams(r, 20, 100)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_pagination", "Paginação inválida: "+err.Error())
		return
	}

	venues, err := h.repo.ListApproved(r.Context(), pagination.limit, pagination.offset)
	if err != nil {
		writeAppError(w, err)
		return
	}
	total, err := h.repo.CountApproved(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	writePaginatedResponse(w, http.StatusOK, venues, pagination.page, pagination.pageSize, total)
}

func (h *VenueHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	venue, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	// Unapproved venues are only visible to their owner and admins.
	if venue.Status != models.VenueApproved {
		caller := middleware.UserID(r.Context())
		if caller != venue.OwnerID && middleware.RoleOf(r.Context()) != models.RoleAdmin {
			writeAppError(w, apperrors.NotFound("venue_not_found", "Local não encontrado"))
			return
		}
	}

	writeJSON(w, http.StatusOK, venue)
}

// ListMine returns the caller's venues regardless of approval status.
func (h *VenueHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	venues, err := h.repo.ListByOwner(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

// @Tags Locais
// @Summary List venues awaiting approval
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Venue
// @Router /api/locais/pendentes [get]
func (h *VenueHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	venues, err := h.repo.ListPending(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, venues)
}

// Create accepts JSON or multipart/form-data; multipart photo files
// are uploaded before the record is persisted. New venues always
// start pendente, owned by the caller.
func (h *VenueHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := middleware.RoleOf(r.Context())
	caller := middleware.UserID(r.Context())
	if !authz.Permit(role, authz.OpCreateVenue, "", caller) {
		writeAppError(w, apperrors.Forbidden("forbidden", "Administradores não cadastram locais"))
		return
	}

	req, err := h.decodeVenueRequest(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	venue := &models.Venue{
		OwnerID:      caller,
		Name:         req.Name,
		Description:  req.Description,
		Address:      req.Address,
		Sport:        req.Sport,
		HourlyRate:   req.HourlyRate,
		Availability: req.Availability,
		Phone:        req.Phone,
		Photos:       req.Photos,
	}
	if err := h.repo.Create(r.Context(), venue); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, venue)
}

func (h *VenueHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	venue, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	role := middleware.RoleOf(r.Context())
	caller := middleware.UserID(r.Context())
	if !authz.Permit(role, authz.OpUpdateVenue, venue.OwnerID, caller) {
		writeAppError(w, apperrors.Forbidden("forbidden", "Apenas o responsável ou um administrador pode alterar o local"))
		return
	}

	req, err := h.decodeVenueUpdate(r)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	updated, err := h.repo.Update(r.Context(), id, req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *VenueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	venue, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	role := middleware.RoleOf(r.Context())
	caller := middleware.UserID(r.Context())
	if !authz.Permit(role, authz.OpDeleteVenue, venue.OwnerID, caller) {
		writeAppError(w, apperrors.Forbidden("forbidden", "Apenas o responsável ou um administrador pode remover o local"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Local removido com sucesso"})
}

// @Tags Locais
// @Summary Approve a pending venue
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Venue
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/locais/{id}/aprovar [patch]
func (h *VenueHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	venue, err := h.repo.Approve(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.notify(r, venue.OwnerID, models.NotifVenueApproved,
		fmt.Sprintf("Seu local %q foi aprovado e já pode receber reservas.", venue.Name))
	writeJSON(w, http.StatusOK, venue)
}

// Reject deletes the pending venue outright per the front-end
// contract; only the owner notification survives.
func (h *VenueHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := venueID(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	venue, err := h.repo.Reject(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.notify(r, venue.OwnerID, models.NotifVenueRejected,
		fmt.Sprintf("Seu local %q foi reprovado e removido da plataforma.", venue.Name))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Local reprovado e removido"})
}

func (h *VenueHandler) notify(r *http.Request, userID string, kind models.NotificationKind, message string) {
	n := &models.Notification{UserID: userID, Kind: kind, Message: message}
	if err := h.notifications.Create(r.Context(), n); err != nil {
		log.Printf("failed to create notification for %s: %v", userID, err)
	}
}

func venueID(r *http.Request) (int, error) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid_request", "ID de local inválido")
	}
	return id, nil
}

// decodeVenueRequest reads a create payload from JSON or multipart
// form. Multipart photo files are uploaded to storage; a "fotos" form
// value may also carry a JSON array of already-hosted URLs.
func (h *VenueHandler) decodeVenueRequest(r *http.Request) (*models.CreateVenueRequest, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req models.CreateVenueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, apperrors.Validation("invalid_request", "Corpo da requisição inválido")
		}
		if req.Photos == nil {
			req.Photos = []string{}
		}
		return &req, nil
	}

	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, apperrors.Validation("invalid_request", "Formulário inválido")
	}

	req := &models.CreateVenueRequest{
		Name:         r.FormValue("nome"),
		Description:  r.FormValue("descricao"),
		Address:      r.FormValue("endereco"),
		Sport:        r.FormValue("esporte"),
		Availability: r.FormValue("disponibilidade"),
		Phone:        r.FormValue("telefone"),
	}
	if s := r.FormValue("valor_hora"); s != "" {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperrors.Validation("validation_error", "valor_hora inválido")
		}
		req.HourlyRate = &rate
	}

	photos, err := h.formPhotos(r)
	if err != nil {
		return nil, err
	}
	req.Photos = photos
	return req, nil
}

func (h *VenueHandler) decodeVenueUpdate(r *http.Request) (*models.UpdateVenueRequest, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req models.UpdateVenueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, apperrors.Validation("invalid_request", "Corpo da requisição inválido")
		}
		return &req, nil
	}

	const maxMemory = 32 << 20
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, apperrors.Validation("invalid_request", "Formulário inválido")
	}

	req := &models.UpdateVenueRequest{}
	setIfPresent := func(key string, dst **string) {
		if vs, ok := r.MultipartForm.Value[key]; ok && len(vs) > 0 {
			v := vs[0]
			*dst = &v
		}
	}
	setIfPresent("nome", &req.Name)
	setIfPresent("descricao", &req.Description)
	setIfPresent("endereco", &req.Address)
	setIfPresent("esporte", &req.Sport)
	setIfPresent("disponibilidade", &req.Availability)
	setIfPresent("telefone", &req.Phone)
	if s := r.FormValue("valor_hora"); s != "" {
		rate, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apperrors.Validation("validation_error", "valor_hora inválido")
		}
		req.HourlyRate = &rate
	}

	// New uploads are appended to whatever URLs the form kept.
	if _, hasKept := r.MultipartForm.Value["fotos"]; hasKept || len(r.MultipartForm.File["fotos"]) > 0 {
		photos, err := h.formPhotos(r)
		if err != nil {
			return nil, err
		}
		req.Photos = photos
	}
	return req, nil
}

// formPhotos collects kept URLs from the "fotos" value (JSON array or
// comma list) and uploads any "fotos" files, returning the combined
// ordered list.
func (h *VenueHandler) formPhotos(r *http.Request) ([]string, error) {
	photos := []string{}
	for _, v := range r.MultipartForm.Value["fotos"] {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "[") {
			var urls []string
			if err := json.Unmarshal([]byte(v), &urls); err != nil {
				return nil, apperrors.Validation("validation_error", "Lista de fotos inválida")
			}
			photos = append(photos, urls...)
			continue
		}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				photos = append(photos, part)
			}
		}
	}

	for _, fileHeader := range r.MultipartForm.File["fotos"] {
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("failed to open photo %s: %v", fileHeader.Filename, err)
			continue
		}
		url, err := h.uploader.Upload(r.Context(), file, fileHeader)
		file.Close()
		if err != nil {
			log.Printf("failed to upload photo %s: %v", fileHeader.Filename, err)
			continue
		}
		photos = append(photos, url)
	}

	return photos, nil
}
