package routes

import (
	"database/sql"

	"github.com/go-chi/chi/v5"
	"quadralivre/internal/config"
	"quadralivre/internal/handlers"
	"quadralivre/internal/middleware"
	"quadralivre/internal/repository"
	"quadralivre/internal/services"
)

func RegisterAuthRoutes(router chi.Router, db *sql.DB, cfg *config.Config) {
	mailer := &services.SMTPSender{
		Host:   cfg.SMTPHost,
		Port:   cfg.SMTPPort,
		User:   cfg.SMTPUser,
		Pass:   cfg.SMTPPassword,
		From:   cfg.SMTPFrom,
		UseTLS: cfg.SMTPUseTLS,
	}
	authHandler := handlers.NewAuthHandler(db, cfg, mailer)
	sessions := repository.NewSessionRepository(db)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/forgot-password", authHandler.ForgotPassword)
		// Logout validates the token itself so a revoked session can
		// still log out without an error.
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTAuth(cfg.JWTSecret, sessions))
			r.Get("/me", authHandler.Me)
		})
	})

	router.Post("/reset-password", authHandler.ResetPassword)
}
