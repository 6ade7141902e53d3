// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"playerpulse/internal/config"
	"playerpulse/internal/domain/sentiment"
	"playerpulse/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Options carries the optional collaborators of the HTTP server
type Options struct {
	// Events enables the /ws/analyses feed when set
	Events        handlers.EventSubscriber
	EventsSubject string
	// DefaultLimit applies to requests without tweets_run; zero means 10
	DefaultLimit int
	Logger       *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, analyzer sentiment.Analyzer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	sentimentHandler := handlers.NewSentimentHandler(analyzer, opts.DefaultLimit, logger)

	// Routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Get("/", sentimentHandler.Welcome)
		r.Post("/analyze_sentiment", sentimentHandler.AnalyzeSentiment)

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})
		r.Handle("/metrics", promhttp.Handler())
	})

	// WebSocket feed of completed analyses
	if opts.Events != nil {
		router.Get("/ws/analyses", handlers.AnalysisWebSocketHandler(opts.Events, opts.EventsSubject, logger))
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
