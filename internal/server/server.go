// Package server runs the public listener: one goroutine per accepted
// connection, one read, one response, then close.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openshelf/library-system/internal/api/metrics"
	"github.com/openshelf/library-system/internal/api/wire"
)

const (
	DefaultBufferSize = 4096

	maxAcceptBackoff = time.Second
)

// Config holds the listener settings.
type Config struct {
	Addr string
	// BufferSize caps the single read per connection. Bytes beyond it are
	// never read.
	BufferSize int
	// ReadTimeout bounds the wait for the first bytes. Zero waits forever.
	ReadTimeout time.Duration
}

// Handler answers a decoded request. It must always return a response.
type Handler interface {
	Serve(ctx context.Context, req *wire.Request) *wire.Response
}

type Server struct {
	cfg     Config
	handler Handler
	log     zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	closing  bool
	conns    sync.WaitGroup
}

func New(cfg Config, handler Handler, log zerolog.Logger) *Server {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	return &Server{cfg: cfg, handler: handler, log: log}
}

// ListenAndServe binds cfg.Addr and serves until Shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until Shutdown closes it, then returns nil.
// Accept failures are logged and retried with backoff.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			metrics.ConnectionErrorsTotal.WithLabelValues("accept").Inc()
			backoff = nextBackoff(backoff)
			s.log.Error().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.mu.Lock()
		if s.closing {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.conns.Add(1)
		s.mu.Unlock()

		go s.handleConn(ctx, conn)
	}
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting and waits for in-flight connections or ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.conns.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.conns.Done()
	defer conn.Close()

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	log := s.log.With().
		Str("conn_id", uuid.NewString()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("connection handler panicked")
		}
	}()

	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}

	buf := make([]byte, s.cfg.BufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		if err != nil {
			metrics.ConnectionErrorsTotal.WithLabelValues("read").Inc()
			log.Debug().Err(err).Msg("read failed")
		}
		return
	}

	req := wire.Decode(buf[:n])
	resp := s.handler.Serve(ctx, req)

	if _, err := conn.Write(resp.Encode()); err != nil {
		metrics.ConnectionErrorsTotal.WithLabelValues("write").Inc()
		log.Warn().Err(err).Str("path", req.Path).Msg("write failed")
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	if d *= 2; d > maxAcceptBackoff {
		d = maxAcceptBackoff
	}
	return d
}
