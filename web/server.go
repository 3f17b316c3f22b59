// Package web serves the investment dashboard and its JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"investimmo-bot/models"
	"investimmo-bot/services"
	"investimmo-bot/utils"
)

// Scanner runs a scan of a city.
type Scanner interface {
	Scan(ctx context.Context, city string, budget int) (*models.ScanReport, error)
}

// Defaults pre-fill the search form.
type Defaults struct {
	City   string
	Budget int
}

// Server is the dashboard HTTP server.
type Server struct {
	port     int
	scanner  Scanner
	board    *services.OpportunityBoard
	defaults Defaults
	logger   *utils.Logger
	pages    *template.Template
	server   *http.Server
}

// NewServer creates a dashboard server. It fails only if the page
// templates do not parse.
func NewServer(port int, scanner Scanner, board *services.OpportunityBoard, defaults Defaults, logger *utils.Logger) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Server{
		port:     port,
		scanner:  scanner,
		board:    board,
		defaults: defaults,
		logger:   logger,
		pages:    pages,
	}, nil
}

// Handler returns the router with every route registered.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/scan", s.handleScan).Methods(http.MethodPost)
	r.HandleFunc("/opportunities", s.handleOpportunities).Methods(http.MethodGet)
	r.HandleFunc("/opportunities/clear", s.handleClearOpportunities).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scan", s.handleAPIScan).Methods(http.MethodGet)
	api.HandleFunc("/opportunities", s.handleAPIOpportunities).Methods(http.MethodGet)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("[web] Dashboard listening on http://localhost:%d", s.port)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("[web] %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
