// Package server exposes the todo service over HTTP: a JSON API under /v1,
// a websocket feed that pushes the whole list after every change, a health
// check and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/todokit/internal/todo"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Server is the HTTP front end of a todo service.
type Server struct {
	todos   *todo.Service
	logger  *slog.Logger
	metrics *Metrics
	hub     *hub
	router  *gin.Engine
	debug   bool

	unsubscribe func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithDebug enables gin's request logger.
func WithDebug(debug bool) Option {
	return func(s *Server) { s.debug = debug }
}

// New creates a Server for svc and subscribes it to changes. Call Close to
// unsubscribe when the server is no longer needed.
func New(svc *todo.Service, opts ...Option) *Server {
	s := &Server{
		todos:   svc,
		logger:  slog.Default(),
		hub:     newHub(),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.newRouter()
	s.metrics.observe(svc.Stats())
	s.unsubscribe = svc.Subscribe(s.onChange)
	return s
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.debug {
		router.Use(gin.Logger())
	}
	router.Use(s.metrics.middleware())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := router.Group("/v1")
	RegisterRoutes(v1, s)
	return router
}

// onChange runs synchronously inside the store's notification path, so it
// only records metrics and queues snapshots.
func (s *Server) onChange(items []*todo.Todo) {
	snap := newSnapshot(items)
	s.metrics.changes.Inc()
	s.metrics.observe(snap.Stats)
	s.hub.broadcast(snap)
}

func (s *Server) currentSnapshot() Snapshot {
	return newSnapshot(s.todos.List(todo.FilterAll, ""))
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully:
// feed clients are told to go away and in-flight requests get
// shutdownTimeout to finish. ln is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("http server shutting down")
		s.hub.close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("http server stopped")
	return err
}

// Close unsubscribes from the service and disconnects feed clients.
func (s *Server) Close() {
	s.hub.close()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}
