// cmd/server/server.go
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/valpere/AttendScrapexter/internal/attendance"
	"github.com/valpere/AttendScrapexter/internal/config"
	apperrors "github.com/valpere/AttendScrapexter/internal/errors"
	"github.com/valpere/AttendScrapexter/internal/monitoring"
	"github.com/valpere/AttendScrapexter/internal/utils"
)

// AttendanceScraper is the part of scraper.Service the HTTP layer needs.
type AttendanceScraper interface {
	ScrapeAttendance(ctx context.Context, username, password string) (*attendance.AttendanceResult, error)
	IsBrowserReady() bool
}

// Deps are the collaborators of Server.
type Deps struct {
	Config  *config.Config
	Scraper AttendanceScraper
	Health  *monitoring.HealthReporter
	Metrics *monitoring.MetricsManager
	Logger  utils.Logger
}

// Server owns routing and middleware for the attendance API.
type Server struct {
	cfg      *config.Config
	scraper  AttendanceScraper
	health   *monitoring.HealthReporter
	metrics  *monitoring.MetricsManager
	messages *apperrors.MessageHandler
	limiter  *utils.KeyedRateLimiter
	logger   utils.Logger
	router   *mux.Router
}

// NewServer wires routes. Deps.Config and Deps.Scraper are required.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = utils.NewNopLogger()
	}
	if deps.Health == nil {
		deps.Health = monitoring.NewHealthReporter(monitoring.HealthConfig{Version: version})
	}

	s := &Server{
		cfg:      deps.Config,
		scraper:  deps.Scraper,
		health:   deps.Health,
		metrics:  deps.Metrics,
		messages: apperrors.NewMessageHandler(deps.Config.Server.ShowTechnicalErrors),
		logger:   deps.Logger,
		router:   mux.NewRouter(),
	}

	rl := deps.Config.RateLimit
	if rl.Enabled {
		s.limiter = utils.NewKeyedRateLimiter(rl.RequestsPerSecond, rl.Burst, rl.IdleTTL)
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.recoverMiddleware, requestIDMiddleware, s.accessLogMiddleware)

	r.Handle("/scrape-attendance", s.rateLimitMiddleware(http.HandlerFunc(s.handleScrapeAttendance))).
		Methods(http.MethodPost)
	r.HandleFunc("/bunk-calculator", s.handleBunkCalculator).Methods(http.MethodPost)
	r.Handle("/health", s.health.HealthHandler()).Methods(http.MethodGet, http.MethodHead)

	if s.cfg.Metrics.Enabled && s.metrics != nil {
		r.Handle(s.cfg.Metrics.Path, s.metrics.MetricsHandler()).Methods(http.MethodGet)
	}

	s.mountFrontend()

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

// mountFrontend serves a built single-page app from StaticDir: /assets/* as
// files, every other GET or HEAD as index.html.
func (s *Server) mountFrontend() {
	dir := s.cfg.Server.StaticDir
	if dir == "" {
		return
	}
	index := filepath.Join(dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		s.logger.Warnf("frontend not found at %s, serving API only", dir)
		return
	}

	s.router.PathPrefix("/assets/").
		Handler(http.FileServer(http.Dir(dir))).
		Methods(http.MethodGet, http.MethodHead)
	s.router.PathPrefix("/").
		HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, r, index)
		}).
		Methods(http.MethodGet, http.MethodHead)
}

// Handler returns the root handler with CORS applied outside routing, so
// preflight requests never reach a route.
func (s *Server) Handler() http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})(s.router)
}

// HTTPServer builds the net/http server for addr.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      s.cfg.Server.RequestTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
