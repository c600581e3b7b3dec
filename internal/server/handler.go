package server

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/classcord/classcord-server/internal/metrics"
	"github.com/classcord/classcord-server/internal/proto"
)

// handler owns one connection: it drives the decoder, dispatches frames, and
// runs the guaranteed cleanup path when the connection ends for any reason.
type handler struct {
	srv      *Server
	conn     *SafeConn
	remote   string
	username string
}

func newHandler(s *Server, conn *SafeConn) *handler {
	return &handler{
		srv:    s,
		conn:   conn,
		remote: conn.RemoteAddr().String(),
	}
}

func (h *handler) run(ctx context.Context) {
	defer h.cleanup()

	h.srv.log.Info().Str("remote", h.remote).Msg("connection accepted")
	h.srv.audit.Info().Str("remote", h.remote).Msg("client connected")

	dec := proto.NewDecoder(h.conn)
	for {
		frame, err := dec.Next()
		if err != nil {
			var perr *proto.ProtocolError
			switch {
			case errors.Is(err, io.EOF):
				h.srv.log.Info().Str("remote", h.remote).Msg("peer closed connection")
			case errors.As(err, &perr):
				// Malformed frames abort the connection.
				h.srv.log.Warn().Err(err).Str("remote", h.remote).Msg("protocol error")
				h.srv.audit.Error().Err(err).Str("remote", h.remote).Str("user", h.auditName()).Msg("protocol error")
			default:
				h.srv.log.Warn().Err(err).Str("remote", h.remote).Msg("read error")
			}
			return
		}

		metrics.FramesReceived.WithLabelValues(frame.Type).Inc()
		ev := h.srv.audit.Info().
			Str("remote", h.remote).
			Str("user", h.auditName()).
			Str("type", frame.Type)
		if frame.Content != nil {
			ev = ev.Str("content", *frame.Content)
		}
		ev.Msg("frame received")

		if err := h.dispatch(ctx, frame); err != nil {
			h.srv.log.Warn().Err(err).Str("remote", h.remote).Str("user", h.auditName()).Msg("dispatch failed")
			h.srv.audit.Error().Err(err).Str("remote", h.remote).Str("user", h.auditName()).Msg("dispatch failed")
			return
		}
	}
}

// cleanup runs exactly once per connection, on every exit path. If the
// session resolved a username, peers see an offline status event and the
// closing socket gets a farewell (a known no-op, kept for wire parity).
func (h *handler) cleanup() {
	if h.username != "" {
		if sess, ok := h.srv.reg.Get(h.conn); ok {
			h.srv.broadcastToChannel(sess.Channel, h.conn, proto.Status(h.username, proto.StateOffline))
		}
		h.srv.sendSystem(h.conn, fmt.Sprintf("%s disconnected.", h.username))
		h.srv.audit.Info().Str("remote", h.remote).Str("user", h.username).Msg("user disconnected")
	}

	h.srv.reg.Remove(h.conn)
	h.conn.Close()
	h.srv.log.Info().Str("remote", h.remote).Msg("connection closed")
}

// send unicasts a reply to the owning connection. A failure here terminates
// the connection, unlike broadcast deliveries which are isolated.
func (h *handler) send(v any) error {
	b, err := proto.Encode(v)
	if err != nil {
		return err
	}
	if _, err := h.conn.Write(b); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func (h *handler) auditName() string {
	if h.username == "" {
		return "guest"
	}
	return h.username
}
