// Package server exposes the work item relay over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/h0rv/azboards/internal/ado"
	"github.com/h0rv/azboards/internal/config"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/h0rv/azboards/internal/logging"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Status reports runtime lifecycle states for the HTTP server.
type Status string

const (
	StatusStarting Status = "starting"
	StatusReady    Status = "ready"
	StatusDraining Status = "draining"
	StatusStopped  Status = "stopped"
)

// Fetcher runs the work item pipeline. *relay.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, req domain.FetchRequest) (*domain.Result, error)
}

// Settings captures runtime configuration for the HTTP server.
type Settings struct {
	Host         string
	Port         int
	MaxBodyBytes int64
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SettingsFromConfig copies the server section of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		cfg = config.Default()
	}
	return Settings{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

// Address returns the TCP bind address in host:port form.
func (s Settings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Server wraps the HTTP listener and handlers of the relay.
type Server struct {
	settings Settings
	fetcher  Fetcher
	logger   *zap.Logger
	newID    func() string

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	status   Status
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRequestIDs overrides request id generation, for tests.
func WithRequestIDs(next func() string) Option {
	return func(s *Server) {
		if next != nil {
			s.newID = next
		}
	}
}

// New prepares a server that answers fetch requests with fetcher.
func New(settings Settings, fetcher Fetcher, opts ...Option) *Server {
	if settings.MaxBodyBytes <= 0 {
		settings.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	s := &Server{
		settings: settings,
		fetcher:  fetcher,
		logger:   zap.NewNop(),
		newID:    func() string { return uuid.NewString() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the routing table of the relay.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /fetch-azure-boards", s.handleFetch)
	return mux
}

// Start binds the TCP listener and begins serving HTTP traffic.
// Request contexts inherit values from ctx but not its cancellation;
// use Shutdown to stop the server. A stopped server cannot be restarted.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusStopped {
		return fmt.Errorf("server: already stopped")
	}
	if s.listener != nil {
		return fmt.Errorf("server: already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = listener
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		base := context.WithoutCancel(ctx)
		server.BaseContext = func(net.Listener) context.Context { return base }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", zap.Error(err))
		}
	}()
	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	s.status = StatusStopped
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Status reports the server's lifecycle state.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// FetchResponse is the success body. Empty and Message are only set when nothing matched.
type FetchResponse struct {
	WorkItems []domain.WorkItem `json:"workItems"`
	Count     int               `json:"count"`
	Empty     bool              `json:"empty,omitempty"`
	Message   string            `json:"message,omitempty"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: string(s.Status()), Version: Version})
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	requestID := s.newID()
	w.Header().Set("X-Request-Id", requestID)
	log := s.logger.With(zap.String("request_id", requestID))

	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Detail: "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "unable to read body"})
		return
	}

	var req domain.FetchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: "invalid JSON body"})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Detail: err.Error()})
		return
	}

	log.Info("fetch requested",
		zap.String("organization", req.Organization),
		zap.String("project", req.Project),
		zap.String("work_item_type", req.WorkItemType),
		zap.String("assigned_to", req.AssignedTo),
		zap.String("pat", logging.Redact(req.Credential)))

	result, err := s.fetcher.Fetch(r.Context(), req)
	if err != nil {
		log.Error("fetch failed",
			zap.String("kind", ado.KindOf(err)),
			zap.Int("upstream_status", ado.StatusCode(err)),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, NewFetchResponse(result))
}

// NewFetchResponse shapes a result for the wire. WorkItems is never null.
func NewFetchResponse(result *domain.Result) FetchResponse {
	if result == nil {
		result = domain.EmptyResult()
	}
	items := result.WorkItems
	if items == nil {
		items = []domain.WorkItem{}
	}
	return FetchResponse{
		WorkItems: items,
		Count:     len(items),
		Empty:     result.Empty,
		Message:   result.Message,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
