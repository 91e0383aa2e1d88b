// Package httpserver exposes the service catalog over HTTP.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/mw"
	"github.com/MrSnakeDoc/caddyboard/internal/httpserver/routes"
	"github.com/MrSnakeDoc/caddyboard/internal/logger"
)

// minRequestTimeout keeps the request deadline above the probe timeout, or
// /api/ping would answer 503 before the probes settle.
const minRequestTimeout = 15 * time.Second

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// NewRouter builds the router with its middlewares and every route.
// requestTimeout bounds each request; values under 15s are raised to it.
func NewRouter(loggerClient logger.Logger, d deps.Deps, requestTimeout time.Duration) http.Handler {
	requestTimeout = max(requestTimeout, minRequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)               // X-Request-ID on each request
	r.Use(middleware.Recoverer)               // never crash the process on panic
	r.Use(middleware.Timeout(requestTimeout)) // per-request deadline
	r.Use(mw.Log(loggerClient))               // structured access logs

	routes.RegisterAll(r, d)

	return r
}

// New builds the HTTP server listening on addr. probeTimeout is the
// per-upstream dial timeout; the request timeout is derived from it.
func New(addr string, probeTimeout time.Duration, loggerClient logger.Logger, d deps.Deps) *Server {
	requestTimeout := 2*probeTimeout + 5*time.Second
	h := NewRouter(loggerClient, d, requestTimeout)

	s := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      max(30*time.Second, requestTimeout+5*time.Second),
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		http:    s,
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...",
		logger.Duration("uptime", time.Since(s.started)))
	return s.http.Shutdown(ctx)
}
