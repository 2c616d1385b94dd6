package routes

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"quadralivre/internal/config"
	"quadralivre/internal/services"
)

func SetupRoutes(db *sql.DB, cfg *config.Config, uploader services.PhotoUploader) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Quadra Livre API"}`))
	})
	r.Get("/health", healthHandler(db))

	r.Route("/api", func(r chi.Router) {
		RegisterAuthRoutes(r, db, cfg)
		RegisterVenueRoutes(r, db, cfg, uploader)
		RegisterReservationRoutes(r, db, cfg)
		RegisterNotificationRoutes(r, db, cfg)
	})

	RegisterSwaggerRoutes(r)

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded","db":{"status":"error","error":"unreachable"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","db":{"status":"ok"}}`))
	}
}
