package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"quadralivre/internal/config"
	"quadralivre/internal/handlers"
	"quadralivre/internal/middleware"
	"quadralivre/internal/repository"
)

func RegisterReservationRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	handler := handlers.NewReservationHandler(db)
	sessions := repository.NewSessionRepository(db)

	router.Route("/reservas", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret, sessions))

		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Delete("/{id}", handler.Cancel)
		r.Post("/{id}/avaliar", handler.Rate)
	})
}
