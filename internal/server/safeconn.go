package server

import (
	"net"
	"sync"
)

// SafeConn wraps a net.Conn with write synchronization. Replies from the
// owning handler and broadcasts from other handlers target the same socket
// concurrently; without a write mutex their frames would interleave on the
// wire and corrupt the newline framing.
type SafeConn struct {
	conn net.Conn
	mu   sync.Mutex // protects writes to conn
}

// NewSafeConn wraps a net.Conn with write synchronization.
func NewSafeConn(conn net.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// Write sends raw bytes under the write mutex. A short write is reported as
// an error by the underlying net.Conn contract.
func (sc *SafeConn) Write(p []byte) (int, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.Write(p)
}

// Read delegates to the underlying connection. Only the owning handler
// goroutine reads, so no synchronization is needed.
func (sc *SafeConn) Read(p []byte) (int, error) {
	return sc.conn.Read(p)
}

// Close closes the underlying connection.
func (sc *SafeConn) Close() error {
	return sc.conn.Close()
}

// RemoteAddr returns the remote network address.
func (sc *SafeConn) RemoteAddr() net.Addr {
	return sc.conn.RemoteAddr()
}
