// Package server exposes gesture-driven canvases over HTTP.
//
// Each session owns a transform store and a gesture controller. Clients
// post pinch and wheel samples and fetch rendered frames:
//
//	POST   /api/v1/sessions                    create, body {width, height}
//	GET    /api/v1/sessions/{id}               state
//	DELETE /api/v1/sessions/{id}               drop
//	PUT    /api/v1/sessions/{id}/viewport      resize, body {width, height}
//	POST   /api/v1/sessions/{id}/pinch         pinch sample
//	DELETE /api/v1/sessions/{id}/pinch         cancel the active pinch
//	POST   /api/v1/sessions/{id}/wheel         wheel sample
//	POST   /api/v1/sessions/{id}/fit           reset to the fit transform
//	GET    /api/v1/sessions/{id}/frame.{fmt}   rendered frame (svg, png, json)
//	GET    /api/v1/geometry?width=&height=     fit and zoom bounds
//	GET    /healthz
//
// Samples for one session are applied in arrival order under the session's
// lock. Sessions live in memory only.
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stripview/pkg/buildinfo"
	"github.com/matzehuels/stripview/pkg/canvas"
	"github.com/matzehuels/stripview/pkg/pipeline"
)

// Defaults for [Options].
const (
	DefaultMaxSessions     = 1024
	DefaultIdleTimeout     = 30 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	Canvas canvas.Configuration
	// Runner renders frames. Its cache is shared by all sessions.
	Runner *pipeline.Runner
	Logger *log.Logger

	MaxSessions     int
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is the HTTP session API.
type Server struct {
	canvas   canvas.Configuration
	runner   *pipeline.Runner
	logger   *log.Logger
	sessions *Registry
	version  string

	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

// New creates a server. The canvas configuration must already be valid.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	return &Server{
		canvas:          opts.Canvas,
		runner:          opts.Runner,
		logger:          opts.Logger,
		sessions:        NewRegistry(opts.MaxSessions),
		version:         buildinfo.Version,
		idleTimeout:     opts.IdleTimeout,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Sessions returns the session registry.
func (srv *Server) Sessions() *Registry { return srv.sessions }

// Handler returns the routed HTTP handler.
func (srv *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(srv.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(serverHeader)

	r.Get("/healthz", srv.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/geometry", srv.handleGeometry)
		r.Post("/sessions", srv.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", srv.withSession(srv.handleGetSession))
			r.Delete("/", srv.handleDeleteSession)
			r.Put("/viewport", srv.withSession(srv.handleViewport))
			r.Post("/pinch", srv.withSession(srv.handlePinch))
			r.Delete("/pinch", srv.withSession(srv.handleCancelPinch))
			r.Post("/wheel", srv.withSession(srv.handleWheel))
			r.Post("/fit", srv.withSession(srv.handleFit))
			r.Get("/frame.{format}", srv.withSession(srv.handleFrame))
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. Idle sessions are swept in the background.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, ln)
}

// Serve is [Server.ListenAndServe] on an existing listener.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go srv.sweep(ctx)

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- hs.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srv.logger.Info("shutting down", "timeout", srv.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srv.shutdownTimeout)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (srv *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(srv.idleTimeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := srv.sessions.Cleanup(srv.idleTimeout); n > 0 {
				srv.logger.Info("expired idle sessions", "count", n)
			}
		}
	}
}

func (srv *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		srv.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func serverHeader(next http.Handler) http.Handler {
	header := buildinfo.ServerHeader()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", header)
		next.ServeHTTP(w, r)
	})
}
