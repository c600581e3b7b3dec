package server

import (
	"github.com/classcord/classcord-server/internal/metrics"
	"github.com/classcord/classcord-server/internal/proto"
	"github.com/classcord/classcord-server/internal/registry"
)

// broadcastToChannel fans v out to every session on channel, skipping
// exclude. Sends run against a point-in-time snapshot with the registry lock
// released; a failure to one recipient is logged and never aborts delivery
// to the rest. Dead recipients are left for their own handler to reap.
func (s *Server) broadcastToChannel(channel string, exclude registry.Conn, v any) {
	b, err := proto.Encode(v)
	if err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("encode broadcast")
		return
	}

	for _, sess := range s.reg.Snapshot() {
		if sess.Channel != channel {
			continue
		}
		if exclude != nil && sess.Conn == exclude {
			continue
		}

		metrics.BroadcastSends.Inc()
		if _, err := sess.Conn.Write(b); err != nil {
			metrics.DeliveryFailures.Inc()
			s.log.Warn().Err(err).Str("user", sess.Username).Str("channel", channel).Msg("broadcast delivery failed")
			s.audit.Error().Err(err).Str("user", sess.Username).Str("channel", channel).Msg("delivery failed")
		}
	}
}

// sendSystem unicasts a server system message. Failures are logged and
// isolated; a dead socket here must not take down the calling path.
func (s *Server) sendSystem(conn registry.Conn, content string) {
	b, err := proto.Encode(proto.System(proto.SenderServer, "", content))
	if err != nil {
		s.log.Error().Err(err).Msg("encode system message")
		return
	}
	if _, err := conn.Write(b); err != nil {
		metrics.DeliveryFailures.Inc()
		s.log.Warn().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("system message delivery failed")
	}
}
