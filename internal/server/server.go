package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"roomAdvisorAi/internal/advisor"
)

// New constructs the HTTP server with routes and middleware.
func New(port string, h advisor.Handler) *http.Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// The frontend is served from anywhere during development.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Post("/analyze", h.Analyze)
		r.Post("/recommendations", h.Recommendations)
		r.Post("/vibe-song", h.VibeSong)
		r.Post("/quiz", h.SaveQuiz)
		r.Get("/reports", h.ListReports)
		r.Get("/events", h.StreamEvents)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		// Song generation can hold a request for minutes while the
		// singing model warms up; don't let the server cut it off first.
		WriteTimeout: 6 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Msg("server ready")
	return srv
}
