// Package registry tracks live sessions and the channel set. All shared
// state lives behind one mutex; callers that need to iterate while sending
// operate on snapshot copies, never on the guarded maps themselves.
package registry

import (
	"errors"
	"net"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownChannel is returned when toggling a channel outside the valid set.
var ErrUnknownChannel = errors.New("unknown channel")

// Conn is the transport handle for a live session. The core never inspects a
// connection beyond send, close, and peer address, so any transport that can
// provide these three works (TCP conns, the WebSocket bridge, test stubs).
type Conn interface {
	Write(p []byte) (n int, err error)
	Close() error
	RemoteAddr() net.Addr
}

// Session is the per-connection state: who is connected, on what channel.
type Session struct {
	ID       string
	Conn     Conn
	Username string
	Channel  string
}

// ChannelStatus reports one channel and its enabled flag.
type ChannelStatus struct {
	Name    string
	Enabled bool
}

// Registry is the single source of truth for live sessions and the
// valid/disabled channel sets. One exclusive lock guards the whole map;
// entries are removed exactly once, by the owning handler's cleanup path.
type Registry struct {
	mu             sync.Mutex
	sessions       map[Conn]*Session
	channels       map[string]struct{}
	disabled       map[string]struct{}
	defaultChannel string
}

// New builds a registry over the given valid channel set. The default
// channel is always part of the valid set.
func New(defaultChannel string, channels []string) *Registry {
	r := &Registry{
		sessions:       make(map[Conn]*Session),
		channels:       make(map[string]struct{}),
		disabled:       make(map[string]struct{}),
		defaultChannel: defaultChannel,
	}
	r.channels[defaultChannel] = struct{}{}
	for _, ch := range channels {
		r.channels[ch] = struct{}{}
	}
	return r
}

// DefaultChannel returns the channel sessions start on.
func (r *Registry) DefaultChannel() string {
	return r.defaultChannel
}

// Put inserts or overwrites the session for conn, placed on the default
// channel, and returns a copy of the stored session.
func (r *Registry) Put(conn Conn, username string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess := &Session{
		ID:       uuid.NewString(),
		Conn:     conn,
		Username: username,
		Channel:  r.defaultChannel,
	}
	r.sessions[conn] = sess
	return *sess
}

// Get returns a copy of the session for conn.
func (r *Registry) Get(conn Conn) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[conn]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Remove deletes the session for conn. Removing an absent key is a no-op.
func (r *Registry) Remove(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, conn)
}

// SetChannel moves the session for conn to channel. Returns false when the
// connection has no registered session.
func (r *Registry) SetChannel(conn Conn, channel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[conn]
	if !ok {
		return false
	}
	sess.Channel = channel
	return true
}

// Snapshot returns a point-in-time copy of every session. Sends against the
// snapshot happen without the lock held, so a recipient may already be gone;
// that staleness is handled by per-send failure isolation.
func (r *Registry) Snapshot() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, *sess)
	}
	return out
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// ChannelExists reports whether name is in the valid channel set.
func (r *Registry) ChannelExists(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.channels[name]
	return ok
}

// ChannelEnabled reports whether name is valid and not disabled. Disabling
// is advisory: it is consulted at join time, members already on the channel
// are not evicted.
func (r *Registry) ChannelEnabled(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[name]; !ok {
		return false
	}
	_, off := r.disabled[name]
	return !off
}

// SetChannelEnabled toggles the disabled flag for a valid channel.
func (r *Registry) SetChannelEnabled(name string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[name]; !ok {
		return ErrUnknownChannel
	}
	if enabled {
		delete(r.disabled, name)
	} else {
		r.disabled[name] = struct{}{}
	}
	return nil
}

// Channels returns every valid channel with its enabled flag, sorted by name.
func (r *Registry) Channels() []ChannelStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ChannelStatus, 0, len(r.channels))
	for name := range r.channels {
		_, off := r.disabled[name]
		out = append(out, ChannelStatus{Name: name, Enabled: !off})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
