package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fixora/fieldreports/internal/logger"
	"github.com/fixora/fieldreports/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	addr   string
	logger logger.Logger
	server *http.Server
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// NewRouter wires middleware, the health check and the report API
func NewRouter(reports *ReportHandler, tokens ports.TokenService, corsOrigins []string, log logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(correlationMiddleware)
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware(log))
	router.Use(corsMiddleware(corsOrigins))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		success(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(tokens))
	reports.RegisterRoutes(api)

	// lets the CORS middleware answer preflight requests on any route
	router.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	return router
}

// NewServer creates a new HTTP server
func NewServer(config ServerConfig, reports *ReportHandler, tokens ports.TokenService, log logger.Logger) *Server {
	addr := net.JoinHostPort(config.Host, config.Port)
	return &Server{
		addr:   addr,
		logger: log,
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(reports, tokens, config.CORSOrigins, log),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "Starting HTTP server", map[string]interface{}{"addr": s.addr})
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "Shutting down HTTP server", nil)
	return s.server.Shutdown(ctx)
}
