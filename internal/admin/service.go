// Package admin is the channel control plane: the administrative operations
// that inspect or mutate shared server state out-of-band from chat traffic.
// It shares the session registry (and its lock) with the connection engine
// and is exposed to operators over the loopback HTTP API.
package admin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/classcord/classcord-server/internal/metrics"
	"github.com/classcord/classcord-server/internal/proto"
	"github.com/classcord/classcord-server/internal/registry"
	"github.com/classcord/classcord-server/internal/store"
)

// SessionInfo is one row of the connected-users view.
type SessionInfo struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Channel    string `json:"channel"`
	RemoteAddr string `json:"remote_addr"`
}

// Service implements the control-plane operations.
type Service struct {
	reg   *registry.Registry
	store store.Store
	log   *zerolog.Logger
	audit *zerolog.Logger
}

// NewService builds the control plane over the shared registry and store.
func NewService(reg *registry.Registry, st store.Store, logger, audit *zerolog.Logger) *Service {
	return &Service{reg: reg, store: st, log: logger, audit: audit}
}

// ListSessions returns a lock-guarded snapshot of every live session.
func (s *Service) ListSessions() []SessionInfo {
	snap := s.reg.Snapshot()
	out := make([]SessionInfo, 0, len(snap))
	for _, sess := range snap {
		out = append(out, SessionInfo{
			ID:         sess.ID,
			Username:   sess.Username,
			Channel:    sess.Channel,
			RemoteAddr: sess.Conn.RemoteAddr().String(),
		})
	}
	return out
}

// ListChannels returns every channel with its enabled flag.
func (s *Service) ListChannels() []registry.ChannelStatus {
	return s.reg.Channels()
}

// SetChannelEnabled toggles a channel's disabled flag. Disabling is
// advisory: sessions already on the channel stay and keep chatting; the
// flag is enforced at future join time only.
func (s *Service) SetChannelEnabled(name string, enabled bool) error {
	if err := s.reg.SetChannelEnabled(name, enabled); err != nil {
		return err
	}
	s.log.Info().Str("channel", name).Bool("enabled", enabled).Msg("channel toggled")
	s.audit.Info().Str("channel", name).Bool("enabled", enabled).Msg("channel toggled")
	return nil
}

// BroadcastAlert sends an admin system message to every connected session
// regardless of channel. This deliberately bypasses per-channel filtering.
// Per-recipient failures are counted and reported, never fatal.
func (s *Service) BroadcastAlert(content string) (delivered, failed int) {
	b, err := proto.Encode(proto.System(proto.SenderAdmin, "", content))
	if err != nil {
		s.log.Error().Err(err).Msg("encode alert")
		return 0, 0
	}

	for _, sess := range s.reg.Snapshot() {
		if _, err := sess.Conn.Write(b); err != nil {
			failed++
			metrics.DeliveryFailures.Inc()
			s.log.Warn().Err(err).Str("user", sess.Username).Msg("alert delivery failed")
			continue
		}
		delivered++
	}

	s.audit.Info().Str("content", content).Int("delivered", delivered).Int("failed", failed).Msg("global alert sent")
	return delivered, failed
}

// ChannelHistory returns the most recent persisted messages for a channel,
// oldest first.
func (s *Service) ChannelHistory(ctx context.Context, channel string, limit int) ([]store.Message, error) {
	if !s.reg.ChannelExists(channel) {
		return nil, registry.ErrUnknownChannel
	}
	return s.store.RecentMessages(ctx, channel, limit)
}
