// Package api exposes the fitting and simulation pipelines over a small
// JSON API.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"psychofit/app"
	"psychofit/domain/psychometric"
	internal "psychofit/internal"
	"psychofit/internal/errors"
)

// Config holds API server configuration
type Config struct {
	Port string
}

// Server is the HTTP front for the study and recovery services.
type Server struct {
	router   *chi.Mux
	study    *app.StudyService
	recovery *app.RecoveryService
	log      *internal.Logger
	cfg      Config
}

// NewServer wires routes and middleware.
func NewServer(cfg Config, study *app.StudyService, recovery *app.RecoveryService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:   chi.NewRouter(),
		study:    study,
		recovery: recovery,
		log:      logger,
		cfg:      cfg,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/api/fit", s.handleFit)
	s.router.Post("/api/simulate", s.handleSimulate)

	return s
}

// Router returns the underlying handler (for tests).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Port
	s.log.Info("listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fitRequest carries an inline dataset plus fitting knobs.
type fitRequest struct {
	Trials   []psychometric.Trial `json:"trials"`
	Restarts int                  `json:"restarts"`
}

func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	var req fitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("invalid JSON body"))
		return
	}
	if req.Restarts < 1 {
		req.Restarts = 10
	}

	if err := psychometric.Dataset(req.Trials).Validate(); err != nil {
		writeError(w, http.StatusBadRequest, errors.InvalidInput(err.Error()))
		return
	}

	data := psychometric.Dataset(req.Trials).SplitHalves()
	report, err := s.study.CompareDataset(r.Context(), data, req.Restarts)
	if err != nil {
		s.log.Error("fit failed: %v", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var cfg app.RecoveryConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("invalid JSON body"))
		return
	}
	if cfg.SubjectsPerModel < 1 {
		cfg.SubjectsPerModel = 10
	}
	if cfg.TrialsPerSubject < 1 {
		cfg.TrialsPerSubject = 500
	}
	if cfg.Restarts < 1 {
		cfg.Restarts = 5
	}

	report, err := s.recovery.Run(r.Context(), cfg)
	if err != nil {
		s.log.Error("simulate failed: %v", err)
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeDatasetFormat,
		errors.CodeParameterOutOfBounds, errors.CodeDimensionMismatch:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
