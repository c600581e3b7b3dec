// Package store defines the persistence service consumed by the chat engine:
// credentials and the append-only channel message log.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrUsernameTaken is returned when registering an already-registered username.
var ErrUsernameTaken = errors.New("username already taken")

// User is a registered account.
type User struct {
	ID       int64
	Username string
	Status   string
	IP       string
	JoinedAt time.Time
}

// Message is one persisted chat line. Receiver is empty for broadcast chat.
type Message struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver,omitempty"`
	Channel   string    `json:"channel"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the persistence service. Implementations bootstrap their schema
// once at startup; all calls are synchronous and safe for concurrent use.
type Store interface {
	// RegisterUser creates a credential record. Returns ErrUsernameTaken when
	// the username is already registered.
	RegisterUser(ctx context.Context, username, password, ip string) error

	// ValidateLogin reports whether the credentials match an existing record.
	ValidateLogin(ctx context.Context, username, password string) (bool, error)

	// SaveMessage appends one message to the log. An empty receiver is
	// persisted as NULL (broadcast chat).
	SaveMessage(ctx context.Context, sender, receiver, channel, content string) error

	// RecentMessages returns up to limit messages for a channel, oldest first.
	RecentMessages(ctx context.Context, channel string, limit int) ([]Message, error)

	// Close closes the underlying database connection.
	Close() error
}
