package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"reviewguard/internal/platform/config"
	"reviewguard/internal/platform/logger"
)

// DefaultAddr is the listen address when PORT is unset
const DefaultAddr = ":5000"

// Server wraps a Router and a stdlib http.Server
type Server struct {
	addr     string
	router   Router
	srv      *stdhttp.Server
	shutdown time.Duration
}

// NewServer reads PORT and SHUTDOWN_TIMEOUT from cfg; opts receive the root Router
func NewServer(cfg config.Conf, opts ...func(Router)) *Server {
	addr := cfg.MayString("PORT", DefaultAddr)
	if addr != "" && addr[0] != ':' {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			addr = ":" + addr
		}
	}
	r := NewRouter()
	for _, o := range opts {
		o(r)
	}
	return &Server{
		addr:     addr,
		router:   r,
		shutdown: cfg.MayDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           r.Mux(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the root router
func (s *Server) Router() Router { return s.router }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Handler returns the root handler, handy for httptest
func (s *Server) Handler() stdhttp.Handler { return s.srv.Handler }

// Run serves until ctx is done then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	log.Info().Dur("timeout", s.shutdown).Msg("http shutting down")
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
