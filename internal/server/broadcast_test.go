package server

import (
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/classcord/classcord-server/internal/config"
	"github.com/classcord/classcord-server/internal/log"
	"github.com/classcord/classcord-server/internal/proto"
	"github.com/classcord/classcord-server/internal/registry"
)

// fakeConn records writes and can be told to fail every write.
type fakeConn struct {
	mu     sync.Mutex
	writes [][]byte
	fail   bool
	name   string
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errors.New("write refused")
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	f.writes = append(f.writes, buf)
	return len(p), nil
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func newBroadcastServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	reg := registry.New(cfg.DefaultChannel, cfg.Channels)
	return New(cfg, reg, nil, log.Nop(), log.Nop())
}

func TestBroadcastExcludesSenderAndOtherChannels(t *testing.T) {
	srv := newBroadcastServer(t)
	reg := srv.Registry()

	sender := &fakeConn{name: "sender"}
	peer := &fakeConn{name: "peer"}
	other := &fakeConn{name: "other"}

	reg.Put(sender, "alice")
	reg.Put(peer, "bob")
	reg.Put(other, "carol")
	reg.SetChannel(other, "#dev")

	msg := proto.ChatMessage{Type: proto.TypeMessage, From: "alice", Channel: "#general", Content: "hi"}
	srv.broadcastToChannel("#general", sender, msg)

	if sender.count() != 0 {
		t.Fatalf("sender must be excluded, got %d writes", sender.count())
	}
	if other.count() != 0 {
		t.Fatalf("other channel must be excluded, got %d writes", other.count())
	}
	if peer.count() != 1 {
		t.Fatalf("expected exactly one delivery to peer, got %d", peer.count())
	}
}

func TestBroadcastIsolatesSendFailures(t *testing.T) {
	srv := newBroadcastServer(t)
	reg := srv.Registry()

	dead := &fakeConn{name: "dead", fail: true}
	alive := &fakeConn{name: "alive"}

	reg.Put(dead, "bob")
	reg.Put(alive, "carol")

	srv.broadcastToChannel("#general", nil, proto.Status("alice", "online"))

	if alive.count() != 1 {
		t.Fatalf("healthy recipient must still be served, got %d writes", alive.count())
	}
	// The failed recipient is not evicted; its own read loop owns cleanup.
	if reg.Len() != 2 {
		t.Fatalf("broadcast must not remove sessions, registry has %d", reg.Len())
	}
}

func TestSendSystemFailureIsNotFatal(t *testing.T) {
	srv := newBroadcastServer(t)

	dead := &fakeConn{fail: true}
	srv.Registry().Put(dead, "bob")

	// Must not panic and must not touch the registry.
	srv.sendSystem(dead, "Goodbye bob!")
	if srv.Registry().Len() != 1 {
		t.Fatalf("unicast failure must not remove the session")
	}
}
