package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/classcord/classcord-server/internal/admin"
	"github.com/classcord/classcord-server/internal/auth"
	"github.com/classcord/classcord-server/internal/config"
	"github.com/classcord/classcord-server/internal/log"
	"github.com/classcord/classcord-server/internal/registry"
	"github.com/classcord/classcord-server/internal/server"
	"github.com/classcord/classcord-server/internal/store/sqlite"
)

func newWSTestServer(t *testing.T) (*httptest.Server, *registry.Registry) {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := config.Default()
	reg := registry.New(cfg.DefaultChannel, cfg.Channels)
	chat := server.New(cfg, reg, st, log.Nop(), log.Nop())

	adminSvc := admin.NewService(reg, st, log.Nop(), log.Nop())
	authSvc := auth.NewService(cfg.AdminPassword, &auth.JWTConfig{
		Secret:   []byte("test-secret"),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      time.Hour,
	})

	srv := NewServer(adminSvc, authSvc, chat, cfg, log.Nop())
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, reg
}

func TestWSBridgeSpeaksChatProtocol(t *testing.T) {
	ts, reg := newWSTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	nc := websocket.NetConn(ctx, conn, websocket.MessageText)
	defer nc.Close()

	r := bufio.NewReader(nc)
	write := func(v any) {
		t.Helper()
		b, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if _, err := nc.Write(append(b, '\n')); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	read := func() map[string]any {
		t.Helper()
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg map[string]any
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			t.Fatalf("unmarshal %q: %v", line, err)
		}
		return msg
	}

	// The bridge speaks the same newline-JSON protocol as the TCP port.
	write(map[string]string{"type": "register", "username": "alice", "password": "pw1"})
	if msg := read(); msg["type"] != "register" || msg["status"] != "ok" {
		t.Fatalf("unexpected register reply: %v", msg)
	}

	write(map[string]string{"type": "login", "username": "alice", "password": "pw1"})
	if msg := read(); msg["type"] != "login" || msg["status"] != "ok" {
		t.Fatalf("unexpected login reply: %v", msg)
	}
	if msg := read(); msg["type"] != "system" || msg["from"] != "server" {
		t.Fatalf("unexpected welcome message: %v", msg)
	}

	// The session landed in the same registry the TCP engine uses.
	deadline := time.Now().Add(2 * time.Second)
	for reg.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	snap := reg.Snapshot()
	if len(snap) != 1 || snap[0].Username != "alice" {
		t.Fatalf("expected alice session in registry, got %+v", snap)
	}
}
