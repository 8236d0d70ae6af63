// Package api exposes the decikv request protocol over HTTP and UDP.
//
// The HTTP server carries one JSON request per POST /rpc body next to
// /health and a prometheus /metrics endpoint. The UDP server speaks the
// same protocol with checksum-framed datagrams and a per-request TTL.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server serves the request protocol over HTTP.
type Server struct {
	dispatcher Dispatcher
	config     ServerConfig
	metrics    *Metrics
	logger     *zap.Logger
}

// NewServer creates a new HTTP API server
func NewServer(dispatcher Dispatcher, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	return &Server{
		dispatcher: dispatcher,
		config:     config,
		metrics:    metrics,
		logger:     logger,
	}
}

// Router assembles the chi routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Health check
	r.Get("/health", s.metrics.InstrumentHandler("GET", "/health", s.handleHealth))

	// Protocol endpoint, key-protected when a key is configured
	r.Group(func(r chi.Router) {
		if s.config.APIKey != "" {
			r.Use(s.metrics.InstrumentAuthMiddleware(apiKeyMiddleware(s.config.APIKey)))
		}
		r.Post("/rpc", s.metrics.InstrumentHandler("POST", "/rpc", s.handleRPC))
	})

	return r
}

// Start runs the HTTP server until its listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	s.logger.Info("http server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}
