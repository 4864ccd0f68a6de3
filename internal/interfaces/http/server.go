package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/aionysus/cellarsight/internal/application"
	"github.com/aionysus/cellarsight/internal/persistence"
	"github.com/aionysus/cellarsight/internal/telemetry"
)

// Server is the read-only monitor server: health, metrics, and record lookup
// for downstream display components. It never writes.
type Server struct {
	router *mux.Router
	server *http.Server
	config ServerConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1", // Local-only by default
		Port:         8080,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates the monitor server over the given collaborators.
func NewServer(config ServerConfig, health persistence.RepositoryHealth, reader *application.RecordReader, metrics *telemetry.Metrics) (*Server, error) {
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("port %d is busy or unavailable: %w", config.Port, err)
	}
	listener.Close()

	router := mux.NewRouter()
	router.HandleFunc("/health", healthHandler(health)).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/records/{wineID}", recordHandler(reader)).Methods(http.MethodGet)

	return &Server{
		router: router,
		config: config,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}, nil
}

// Start runs the server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("Monitor server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("monitor server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func healthHandler(health persistence.RepositoryHealth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		check := health.Health(r.Context())

		status := http.StatusOK
		if !check.Healthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, check)
	}
}

func recordHandler(reader *application.RecordReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wineID, err := strconv.ParseInt(mux.Vars(r)["wineID"], 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid wine id"})
			return
		}

		rec, err := reader.Get(r.Context(), wineID)
		if err != nil {
			log.Warn().Err(err).Int64("wine_id", wineID).Msg("Record lookup failed")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		if rec == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no record for wine"})
			return
		}

		writeJSON(w, http.StatusOK, rec)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
