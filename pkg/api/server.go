// Package api serves the estimate form and its JSON API over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mimir-aip/carprice/pkg/config"
	"github.com/mimir-aip/carprice/pkg/estimator"
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/mimir-aip/carprice/pkg/models"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ModelInfoFunc reports the state of the model handle
type ModelInfoFunc func() models.ModelInfo

// Server provides the HTTP form and API endpoints
type Server struct {
	router     *mux.Router
	service    *estimator.Service
	modelInfo  ModelInfoFunc
	cfg        config.ServerConfig
	logger     *logging.Logger
	httpServer *http.Server
}

// NewServer creates a new server. modelInfo may be nil.
func NewServer(service *estimator.Service, modelInfo ModelInfoFunc, cfg config.ServerConfig, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetLogger()
	}
	s := &Server{
		router:    mux.NewRouter(),
		service:   service,
		modelInfo: modelInfo,
		cfg:       cfg,
		logger:    logger,
	}
	s.setupRoutes()

	read, write, idle := cfg.Timeouts()
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}
	return s
}

// setupRoutes sets up the HTTP routes with API versioning
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.errorRecoveryMiddleware)

	// Form
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)

	// Health and metrics (no version)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.Use(s.versionMiddleware("v1"))
	v1.HandleFunc("/estimate", s.handleEstimate).Methods(http.MethodPost)
	v1.HandleFunc("/fields", s.handleFields).Methods(http.MethodGet)
	v1.HandleFunc("/schema", s.handleSchema).Methods(http.MethodGet)
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called. It returns nil at once when
// Shutdown already ran.
func (s *Server) Start() error {
	s.logger.Info("Starting car price server", logging.String("addr", s.cfg.Addr()), logging.Component("server"))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server. It is safe to call before or
// while Start runs.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
