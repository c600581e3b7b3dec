// Package proto defines the newline-delimited JSON wire protocol spoken by
// chat clients. Each frame is one UTF-8 JSON object terminated by '\n'.
package proto

import "time"

// Inbound frame types.
const (
	TypeRegister = "register"
	TypeLogin    = "login"
	TypeMessage  = "message"
	TypeStatus   = "status"
)

// Outbound frame types.
const (
	TypeSystem = "system"
	TypeError  = "error"
)

// Well-known presence states.
const (
	StateOnline  = "online"
	StateOffline = "offline"
)

// Well-known system senders.
const (
	SenderServer = "server"
	SenderAdmin  = "admin"
)

// Frame is the decoded inbound envelope. Fields beyond these are ignored.
// The optional fields are pointers so a handler can tell a missing key from
// a present-but-empty value: only the former is a protocol violation, an
// empty string is legal input (empty chat line, empty password).
type Frame struct {
	Type     string  `json:"type"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Content  *string `json:"content"`
	From     *string `json:"from"`
	State    *string `json:"state"`
}

// Ack confirms a successful register or login request.
type Ack struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// OK builds the standard `{type, status: ok}` acknowledgement.
func OK(typ string) Ack {
	return Ack{Type: typ, Status: "ok"}
}

// ErrorReply reports a recoverable failure to the requesting client.
type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Error builds an error reply.
func Error(message string) ErrorReply {
	return ErrorReply{Type: TypeError, Message: message}
}

// SystemMessage is a server-originated announcement.
type SystemMessage struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Channel   string `json:"channel,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// System builds a system message from the server sender stamped with now.
func System(from, channel, content string) SystemMessage {
	return SystemMessage{
		Type:      TypeSystem,
		From:      from,
		Channel:   channel,
		Content:   content,
		Timestamp: Timestamp(time.Now()),
	}
}

// StatusEvent announces a presence change to channel peers.
type StatusEvent struct {
	Type  string `json:"type"`
	User  string `json:"user"`
	State string `json:"state"`
}

// Status builds a presence event.
func Status(user, state string) StatusEvent {
	return StatusEvent{Type: TypeStatus, User: user, State: state}
}

// ChatMessage is a relayed chat line, stamped with sender, channel and time.
type ChatMessage struct {
	Type      string `json:"type"`
	From      string `json:"from"`
	Channel   string `json:"channel"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Timestamp formats t the way the wire protocol expects.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
