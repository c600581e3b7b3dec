// Package server implements the chat relay engine: the TCP listener, the
// per-connection handler loop, the message dispatcher, and channel broadcast.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/classcord/classcord-server/internal/config"
	"github.com/classcord/classcord-server/internal/metrics"
	"github.com/classcord/classcord-server/internal/registry"
	"github.com/classcord/classcord-server/internal/store"
)

// Server accepts chat connections and drives one handler goroutine per
// connection. The listener goroutine only accepts; it never blocks on
// client I/O.
type Server struct {
	cfg      config.Config
	reg      *registry.Registry
	store    store.Store
	log      *zerolog.Logger
	audit    *zerolog.Logger
	listener net.Listener
	wg       sync.WaitGroup
}

// New constructs the relay engine over the given registry and store.
func New(cfg config.Config, reg *registry.Registry, st store.Store, logger, audit *zerolog.Logger) *Server {
	return &Server{
		cfg:   cfg,
		reg:   reg,
		store: st,
		log:   logger,
		audit: audit,
	}
}

// Registry exposes the session registry for the control plane.
func (s *Server) Registry() *registry.Registry {
	return s.reg
}

// Listen binds the TCP listener.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("chat listener started")
	s.audit.Info().Str("addr", ln.Addr().String()).Msg("server started")
	return nil
}

// Addr returns the bound listener address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until ctx is cancelled, then closes every live
// connection and waits for the handlers to finish their cleanup paths.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.Warn().Err(err).Msg("accept error")
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.HandleConn(ctx, conn)
		}()
	}

	s.wg.Wait()
	return nil
}

// Run binds the listener and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// HandleConn runs the connection handler loop for one transport connection.
// It is also the entry point for the WebSocket bridge, which hands over a
// net.Conn speaking the same newline-JSON protocol.
func (s *Server) HandleConn(ctx context.Context, conn net.Conn) {
	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	// Closing the conn on cancellation unblocks the decoder read, so even a
	// session that never sent a frame exits through the cleanup path.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	h := newHandler(s, NewSafeConn(conn))
	h.run(ctx)
}
