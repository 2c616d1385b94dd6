package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"quadralivre/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{"error": code, "message": message})
}

// writeAppError maps a taxonomy error to its HTTP status; anything
// outside the taxonomy is logged and reported as a 500 without
// leaking internals.
func writeAppError(w http.ResponseWriter, err error) {
	e := apperrors.As(err)
	if e.Kind == apperrors.KindInternal {
		log.Printf("internal error: %v", err)
	}
	writeJSONError(w, apperrors.HTTPStatus(e.Kind), e.Code, e.Message)
}

type paginationParams struct {
	page     int
	pageSize int
	limit    int
	offset   int
}

func parsePaginationParams(r *http.Request, defaultSize, maxSize int) (paginationParams, error) {
	page := 1
	if s := r.URL.Query().Get("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return paginationParams{}, fmt.Errorf("invalid page %q", s)
		}
		page = n
	}

	pageSize := defaultSize
	if s := r.URL.Query().Get("page_size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return paginationParams{}, fmt.Errorf("invalid page_size %q", s)
		}
		if n > maxSize {
			n = maxSize
		}
		pageSize = n
	}

	return paginationParams{
		page:     page,
		pageSize: pageSize,
		limit:    pageSize,
		offset:   (page - 1) * pageSize,
	}, nil
}

func writePaginatedResponse(w http.ResponseWriter, status int, data any, page, pageSize, total int) {
	writeJSON(w, status, map[string]any{
		"data":      data,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}
