package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/oakd/internal/logger"
)

// Server wraps an http.Server with the graceful start/stop lifecycle the
// rest of this repo expects: Start blocks the caller's goroutine until the
// listener fails or Stop is called, and Stop is safe to call more than once
// or concurrently with Start.
type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener

	stopOnce sync.Once
}

// NewServer builds a Server bound to addr (e.g. ":8833") serving handler.
// shutdownTimeout bounds how long Stop waits for in-flight requests to
// finish before forcing the listener closed.
func NewServer(addr string, handler http.Handler, shutdownTimeout time.Duration) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

// Port returns the TCP port the server is actually bound to. Only valid
// after Start has begun listening; returns 0 beforehand.
func (s *Server) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return 0
	}
	if tcpAddr, ok := s.listener.Addr().(*net.TCPAddr); ok {
		return tcpAddr.Port
	}
	return 0
}

// Start binds the listener and serves until ctx is cancelled, Stop is
// called, or the listener fails. A nil return means Stop was called; any
// other error is the listener's own failure.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logger.Info("server listening", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Serve(listener) }()

	select {
	case <-ctx.Done():
		return s.Stop(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Stop gracefully shuts down the server, waiting up to shutdownTimeout for
// in-flight requests. Safe to call multiple times; only the first call has
// effect.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		timeout := s.shutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		logger.Info("server shutting down", "timeout", timeout)
		err = s.http.Shutdown(shutdownCtx)
	})
	return err
}
