package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fortuna/goaliestats/internal/ingest"
	"github.com/fortuna/goaliestats/internal/logging"
)

// Options configures the REST server.
type Options struct {
	Port           string
	AllowedOrigins []string
	// HealthChecks are run by /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
	// WebSocket, when set, is mounted at /ws/imports.
	WebSocket http.HandlerFunc
	Logger    *logging.Logger
}

// Server represents the REST API server
type Server struct {
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(opts Options, importer ingest.Importer) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	handler := NewHandler(importer, opts.HealthChecks, logger)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/import", handler.RunImport).Methods(http.MethodPost)
	api.HandleFunc("/import", handler.GetImport).Methods(http.MethodGet)

	if opts.WebSocket != nil {
		router.HandleFunc("/ws/imports", opts.WebSocket).Methods(http.MethodGet)
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})

	return &Server{
		handler: handler,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%s", opts.Port),
			Handler:           c.Handler(router),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
