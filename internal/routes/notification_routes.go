package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"quadralivre/internal/config"
	"quadralivre/internal/handlers"
	"quadralivre/internal/middleware"
	"quadralivre/internal/repository"
)

func RegisterNotificationRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	handler := handlers.NewNotificationHandler(db)
	sessions := repository.NewSessionRepository(db)

	router.Route("/notificacoes", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret, sessions))

		r.Get("/", handler.List)
		r.Post("/{id}/read", handler.MarkRead)
		r.Post("/read-all", handler.MarkAllRead)
	})
}
