// Package http is the ops HTTP surface: chi server, JSON envelope and body binding
package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"reviewpipe/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// ServerOptions configures the ops server
type ServerOptions struct {
	Addr           string
	AllowedOrigins []string
	SlowRequest    time.Duration
}

// NewServer creates a chi-backed server with the standard middleware stack
// mount receives the *chi.Mux so callers can register routes
func NewServer(opt ServerOptions, mount ...func(*chi.Mux)) *Server {
	if opt.Addr == "" {
		opt.Addr = ":8080"
	}
	m := chi.NewRouter()
	m.Use(chimw.RequestID, chimw.RealIP, RecoverJSON, AccessLog(opt.SlowRequest))
	if len(opt.AllowedOrigins) > 0 {
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: opt.AllowedOrigins,
			AllowedMethods: []string{stdhttp.MethodGet, stdhttp.MethodPost, stdhttp.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
	for _, fn := range mount {
		fn(m)
	}
	return &Server{
		addr: opt.Addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              opt.Addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the router, mostly for httptest
func (s *Server) Handler() stdhttp.Handler { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until ctx is done or the listener fails
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http listening")
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shCtx)
	}
}
