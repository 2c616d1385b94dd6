package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"quadralivre/internal/config"
	"quadralivre/internal/handlers"
	"quadralivre/internal/middleware"
	"quadralivre/internal/models"
	"quadralivre/internal/repository"
	"quadralivre/internal/services"
)

func RegisterVenueRoutes(router chi.Router, db *sql.DB, cfg *config.Config, uploader services.PhotoUploader) {
	handler := handlers.NewVenueHandler(db, uploader)
	sessions := repository.NewSessionRepository(db)

	router.Route("/locais", func(r chi.Router) {
		r.Get("/", handler.List)
		r.With(middleware.OptionalJWTAuth(cfg.JWTSecret, sessions)).Get("/{id}", handler.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret, sessions))

			r.Get("/meus", handler.ListMine)
			r.Post("/", handler.Create)
			r.Put("/{id}", handler.Update)
			r.Delete("/{id}", handler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(models.RoleAdmin))
				r.Get("/pendentes", handler.ListPending)
				r.Patch("/{id}/aprovar", handler.Approve)
				r.Delete("/{id}/reprovar", handler.Reject)
			})
		})
	})
}
