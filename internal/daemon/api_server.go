package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"scrollreel/internal/config"
	"scrollreel/internal/frames"
	"scrollreel/internal/logging"
	"scrollreel/internal/services"
)

const multipartOverhead = 1 << 20

type apiServer struct {
	bind        string
	logger      *slog.Logger
	daemon      *Daemon
	maxBody     int64
	handler     http.Handler
	readTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:    strings.TrimSpace(cfg.Paths.APIBind),
		logger:  logging.NewComponentLogger(logger, "api-server"),
		daemon:  d,
		maxBody: d.pipeline.Limits().MaxBytes + multipartOverhead,
	}
	if srv.maxBody <= multipartOverhead {
		srv.maxBody = 5<<20 + multipartOverhead
	}

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/status", srv.handleStatus)
	apiMux.HandleFunc("GET /api/health", srv.handleHealth)
	apiMux.HandleFunc("GET /api/animations", srv.handleListAnimations)
	apiMux.HandleFunc("POST /api/animations", srv.handleCreateAnimation)
	apiMux.HandleFunc("GET /api/animations/{id}", srv.handleGetAnimation)
	apiMux.HandleFunc("DELETE /api/animations/{id}", srv.handleDeleteAnimation)
	apiMux.HandleFunc("PUT /api/animations/{id}/title", srv.handleUpdateTitle)
	apiMux.HandleFunc("PUT /api/animations/{id}/settings", srv.handleUpdateSettings)
	apiMux.HandleFunc("POST /api/animations/{id}/frames", srv.handleUploadFrame)
	apiMux.HandleFunc("DELETE /api/animations/{id}/frames/{ordinal}", srv.handleDeleteFrame)
	apiMux.HandleFunc("GET /api/animations/{id}/nonce", srv.handleNonce)
	apiMux.HandleFunc("GET /api/animations/{id}/embed", srv.handleEmbed)
	apiMux.HandleFunc("GET /api/animations/{id}/manifest", srv.handleManifest)

	mux := http.NewServeMux()
	mux.Handle("/api/", srv.authMiddleware(cfg.Paths.APIToken, apiMux))
	mux.Handle("GET /frames/", http.StripPrefix("/frames/", http.FileServer(fileOnlyFS{http.Dir(cfg.Paths.FramesDir)})))

	srv.handler = requestIDMiddleware(mux)
	srv.readTimeout = time.Duration(max(cfg.API.RequestTimeoutSeconds, 15)) * time.Second
	return srv
}

// listen binds the API address and returns a function that serves on it
// until shutdown.
func (s *apiServer) listen() (func() error, error) {
	if s.bind == "" {
		return nil, errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return nil, fmt.Errorf("api listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.readTimeout,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))

	return func() error {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
			return err
		}
		return nil
	}, nil
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) shutdown() {
	s.mu.Lock()
	server := s.server
	s.listener = nil
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

// writeFailure maps err to a status and a {message} body. Server-side
// failures are logged; input errors are the caller's concern.
func (s *apiServer) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "request failed", "api_request_failed",
			logging.Error(err),
			logging.String("path", r.URL.Path),
			logging.String(logging.FieldErrorHint, "check daemon logs and storage health"),
		)
	}
	payload := map[string]string{"message": frames.MessageOf(err)}
	if kind := frames.KindOf(err); kind != "" {
		payload["kind"] = string(kind)
	}
	s.writeJSON(w, status, payload)
}

// fileOnlyFS hides directories so frame paths cannot be listed.
type fileOnlyFS struct {
	fs http.FileSystem
}

func (f fileOnlyFS) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
