package registry

import (
	"net"
	"sync"
	"testing"
)

// stubConn satisfies Conn for registry tests; no real socket involved.
type stubConn struct {
	name string
}

func (c *stubConn) Write(p []byte) (int, error) { return len(p), nil }
func (c *stubConn) Close() error                { return nil }
func (c *stubConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func newTestRegistry() *Registry {
	return New("#general", []string{"#general", "#admin", "#dev"})
}

func TestPutGetRemove(t *testing.T) {
	r := newTestRegistry()
	conn := &stubConn{name: "a"}

	sess := r.Put(conn, "alice")
	if sess.Channel != "#general" {
		t.Fatalf("expected default channel, got %q", sess.Channel)
	}
	if sess.ID == "" {
		t.Fatalf("expected session ID to be assigned")
	}

	got, ok := r.Get(conn)
	if !ok || got.Username != "alice" {
		t.Fatalf("expected alice session, got %+v ok=%v", got, ok)
	}

	r.Remove(conn)
	if _, ok := r.Get(conn); ok {
		t.Fatalf("expected session to be removed")
	}

	// Removing an absent key is a no-op.
	r.Remove(conn)
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}

func TestPutOverwritesExistingSession(t *testing.T) {
	r := newTestRegistry()
	conn := &stubConn{}

	r.Put(conn, "guest_1")
	r.SetChannel(conn, "#dev")
	r.Put(conn, "alice")

	got, _ := r.Get(conn)
	if got.Username != "alice" || got.Channel != "#general" {
		t.Fatalf("expected overwritten session on default channel, got %+v", got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected single entry, got %d", r.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := newTestRegistry()
	conn := &stubConn{}
	r.Put(conn, "alice")

	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected one entry, got %d", len(snap))
	}

	// Mutating the snapshot must not leak into the registry.
	snap[0].Channel = "#dev"
	got, _ := r.Get(conn)
	if got.Channel != "#general" {
		t.Fatalf("snapshot mutation leaked into registry: %+v", got)
	}
}

func TestSetChannel(t *testing.T) {
	r := newTestRegistry()
	conn := &stubConn{}

	if r.SetChannel(conn, "#dev") {
		t.Fatalf("expected SetChannel to fail for unregistered conn")
	}

	r.Put(conn, "alice")
	if !r.SetChannel(conn, "#dev") {
		t.Fatalf("expected SetChannel to succeed")
	}
	got, _ := r.Get(conn)
	if got.Channel != "#dev" {
		t.Fatalf("expected #dev, got %q", got.Channel)
	}
}

func TestChannelToggling(t *testing.T) {
	r := newTestRegistry()

	if !r.ChannelEnabled("#dev") {
		t.Fatalf("expected #dev enabled by default")
	}
	if err := r.SetChannelEnabled("#dev", false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if r.ChannelEnabled("#dev") {
		t.Fatalf("expected #dev disabled")
	}
	if !r.ChannelExists("#dev") {
		t.Fatalf("disabled channel must stay in the valid set")
	}
	if err := r.SetChannelEnabled("#dev", true); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !r.ChannelEnabled("#dev") {
		t.Fatalf("expected #dev re-enabled")
	}

	if err := r.SetChannelEnabled("#nope", false); err != ErrUnknownChannel {
		t.Fatalf("expected ErrUnknownChannel, got %v", err)
	}
}

func TestChannelsSorted(t *testing.T) {
	r := newTestRegistry()
	_ = r.SetChannelEnabled("#admin", false)

	chans := r.Channels()
	want := []ChannelStatus{
		{Name: "#admin", Enabled: false},
		{Name: "#dev", Enabled: true},
		{Name: "#general", Enabled: true},
	}
	if len(chans) != len(want) {
		t.Fatalf("expected %d channels, got %d", len(want), len(chans))
	}
	for i := range want {
		if chans[i] != want[i] {
			t.Fatalf("channel %d: got %+v, want %+v", i, chans[i], want[i])
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &stubConn{}
			r.Put(conn, "user")
			r.SetChannel(conn, "#dev")
			_ = r.Snapshot()
			r.Remove(conn)
		}()
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry after churn, got %d", r.Len())
	}
}
