// Package server exposes the table catalog over HTTP in the shape the table
// picker reads.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/bqlab/internal/api"
	"github.com/sadopc/bqlab/internal/catalog"
)

// BasePath is the prefix every catalog route is mounted under.
const BasePath = "/bigquerytablemodelview/api"

// Catalog is the storage the server reads and writes.
type Catalog interface {
	List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Table, int, error)
	Get(ctx context.Context, id int64) (catalog.Table, error)
	Create(ctx context.Context, t catalog.Table) (catalog.Table, error)
	Update(ctx context.Context, t catalog.Table) (catalog.Table, error)
	Delete(ctx context.Context, id int64) error
}

// Config holds configuration for the catalog server.
type Config struct {
	Addr    string
	Catalog Catalog
	// UserHeader names the request header carrying the user name.
	UserHeader string
	// Access maps users to glob patterns over table full names. When empty
	// every table is visible to everyone.
	Access map[string][]string
	Logger *slog.Logger
}

// Server is the catalog HTTP server.
type Server struct {
	addr       string
	catalog    Catalog
	userHeader string
	access     map[string][]string
	logger     *slog.Logger
}

// New creates a Server.
func New(cfg Config) *Server {
	header := cfg.UserHeader
	if header == "" {
		header = api.DefaultUserHeader
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:       cfg.Addr,
		catalog:    cfg.Catalog,
		userHeader: header,
		access:     cfg.Access,
		logger:     logger,
	}
}

// Handler returns the router with every route and middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route(BasePath, func(r chi.Router) {
		r.Get("/read", s.handleRead)
		r.Get("/get/{pk}", s.handleGet)
		r.Post("/create", s.handleCreate)
		r.Put("/update/{pk}", s.handleUpdate)
		r.Delete("/delete/{pk}", s.handleDelete)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting catalog server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down catalog server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// allow returns the access filter for the request's user, or nil when no
// access rules are configured.
func (s *Server) allow(r *http.Request) func(catalog.Table) bool {
	if len(s.access) == 0 {
		return nil
	}
	return catalog.GlobAccess(s.access[r.Header.Get(s.userHeader)])
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
