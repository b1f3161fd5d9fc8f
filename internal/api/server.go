package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/mangoconv/internal/ingest"
)

// Config holds the HTTP server settings.
type Config struct {
	Port        int
	APIToken    string
	MaxUploadMB int
	Gatherer    prometheus.Gatherer // default prometheus.DefaultGatherer
}

type Server struct {
	router    *chi.Mux
	port      int
	svc       *ingest.Service
	calls     CallReader
	maxUpload int64
	logger    *slog.Logger
}

// NewServer builds the router. calls may be nil when no store is configured.
func NewServer(cfg Config, svc *ingest.Service, calls CallReader, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 32
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		router:    router,
		port:      cfg.Port,
		svc:       svc,
		calls:     calls,
		maxUpload: int64(maxMB) << 20,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Get("/", s.index)
	router.Post("/upload", s.upload)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.Route("/api/v1/calls", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(cfg.APIToken))
		r.Post("/", s.parseCalls)
		if calls != nil {
			r.Get("/{id}", s.getCall)
		}
	})

	return s
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
