package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/classcord/classcord-server/internal/proto"
	"github.com/classcord/classcord-server/internal/store"
)

// Reply strings are part of the wire contract; clients match on them.
const (
	replyUsernameTaken = "Username already exists."
	replyLoginFailed   = "Login failed."
	replyJoinUsage     = "Usage: /join #channel"
	replyServerError   = "Internal server error."
)

// dispatch interprets one decoded frame against current session state. A
// returned error aborts the connection; recoverable failures are reported to
// the client as error replies instead.
func (h *handler) dispatch(ctx context.Context, frame proto.Frame) error {
	switch frame.Type {
	case proto.TypeRegister:
		return h.handleRegister(ctx, frame)
	case proto.TypeLogin:
		return h.handleLogin(ctx, frame)
	case proto.TypeMessage:
		return h.handleMessage(ctx, frame)
	case proto.TypeStatus:
		return h.handleStatus(frame)
	default:
		return &proto.ProtocolError{Reason: "unknown message type " + frame.Type}
	}
}

// handleRegister creates a credential record. Registration is independent of
// login: the session state does not change on success.
func (h *handler) handleRegister(ctx context.Context, frame proto.Frame) error {
	// A missing key is a protocol violation; an empty string is not.
	if frame.Username == nil || frame.Password == nil {
		return &proto.ProtocolError{Reason: "register frame missing credentials"}
	}
	username, password := *frame.Username, *frame.Password

	err := h.srv.store.RegisterUser(ctx, username, password, remoteIP(h.remote))
	switch {
	case err == nil:
		h.srv.audit.Info().Str("user", username).Str("remote", h.remote).Msg("user registered")
		return h.send(proto.OK(proto.TypeRegister))
	case errors.Is(err, store.ErrUsernameTaken):
		h.srv.log.Warn().Str("user", username).Str("remote", h.remote).Msg("register rejected: username taken")
		return h.send(proto.Error(replyUsernameTaken))
	default:
		// Persistence outage: report a generic error, keep the connection.
		h.srv.log.Error().Err(err).Str("user", username).Msg("register failed")
		return h.send(proto.Error(replyServerError))
	}
}

// handleLogin authenticates the session and places it on the default channel.
func (h *handler) handleLogin(ctx context.Context, frame proto.Frame) error {
	if frame.Username == nil || frame.Password == nil {
		return &proto.ProtocolError{Reason: "login frame missing credentials"}
	}
	username, password := *frame.Username, *frame.Password

	ok, err := h.srv.store.ValidateLogin(ctx, username, password)
	if err != nil {
		h.srv.log.Error().Err(err).Str("user", username).Msg("login validation failed")
		return h.send(proto.Error(replyServerError))
	}
	if !ok {
		h.srv.log.Warn().Str("user", username).Str("remote", h.remote).Msg("login failed")
		h.srv.audit.Info().Str("user", username).Str("remote", h.remote).Msg("login rejected")
		return h.send(proto.Error(replyLoginFailed))
	}

	h.username = username
	sess := h.srv.reg.Put(h.conn, h.username)

	if err := h.send(proto.OK(proto.TypeLogin)); err != nil {
		return err
	}
	h.srv.sendSystem(h.conn, fmt.Sprintf("Welcome %s to Classcord!", h.username))
	h.srv.broadcastToChannel(sess.Channel, h.conn, proto.Status(h.username, proto.StateOnline))

	h.srv.log.Info().Str("user", h.username).Str("remote", h.remote).Msg("user logged in")
	h.srv.audit.Info().Str("user", h.username).Str("remote", h.remote).Msg("user logged in")
	return nil
}

// handleMessage relays a chat line or executes the /join command. An
// anonymous session is promoted with the message's own self-asserted sender
// name: this is the guest path, deliberately separate from credentialed login.
func (h *handler) handleMessage(ctx context.Context, frame proto.Frame) error {
	if frame.Content == nil {
		return &proto.ProtocolError{Reason: "message frame missing content"}
	}
	// An empty content string is a legal, relayable chat line.
	content := *frame.Content

	if h.username == "" {
		name := "guest"
		if frame.From != nil && *frame.From != "" {
			name = *frame.From
		}
		h.username = name
		h.srv.reg.Put(h.conn, name)
		h.srv.audit.Info().Str("user", name).Str("remote", h.remote).Msg("guest session promoted")
	}

	if strings.HasPrefix(content, "/join") {
		return h.handleJoin(content)
	}

	sess, ok := h.srv.reg.Get(h.conn)
	if !ok {
		return fmt.Errorf("session missing for %s", h.remote)
	}

	if err := h.srv.store.SaveMessage(ctx, h.username, "", sess.Channel, content); err != nil {
		h.srv.log.Error().Err(err).Str("user", h.username).Msg("save message failed")
		return h.send(proto.Error(replyServerError))
	}

	msg := proto.ChatMessage{
		Type:      proto.TypeMessage,
		From:      h.username,
		Channel:   sess.Channel,
		Content:   content,
		Timestamp: proto.Timestamp(time.Now()),
	}
	h.srv.log.Info().Str("user", h.username).Str("channel", sess.Channel).Msg("chat message relayed")
	h.srv.broadcastToChannel(sess.Channel, h.conn, msg)
	return nil
}

// handleJoin moves the session to the target channel, then announces the
// join to the channel it just entered.
func (h *handler) handleJoin(content string) error {
	parts := strings.Fields(content)
	if len(parts) < 2 {
		return h.send(proto.Error(replyJoinUsage))
	}
	target := parts[1]

	if !h.srv.reg.ChannelExists(target) {
		return h.send(proto.Error(fmt.Sprintf("Channel %s inexistant.", target)))
	}
	if !h.srv.reg.ChannelEnabled(target) {
		return h.send(proto.Error(fmt.Sprintf("Channel %s disabled.", target)))
	}

	h.srv.reg.SetChannel(h.conn, target)

	announcement := proto.System(proto.SenderServer, target, fmt.Sprintf("%s joined channel %s", h.username, target))
	h.srv.broadcastToChannel(target, nil, announcement)

	h.srv.log.Info().Str("user", h.username).Str("channel", target).Msg("channel joined")
	h.srv.audit.Info().Str("user", h.username).Str("channel", target).Msg("channel joined")
	return nil
}

// handleStatus broadcasts a presence change to channel peers. Anonymous
// sessions without a resolved username are ignored silently.
func (h *handler) handleStatus(frame proto.Frame) error {
	if h.username == "" {
		return nil
	}
	if frame.State == nil {
		return &proto.ProtocolError{Reason: "status frame missing state"}
	}
	state := *frame.State

	sess, ok := h.srv.reg.Get(h.conn)
	if !ok {
		return nil
	}
	h.srv.broadcastToChannel(sess.Channel, h.conn, proto.Status(h.username, state))
	h.srv.audit.Info().Str("user", h.username).Str("state", state).Msg("status changed")
	return nil
}

func remoteIP(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}
