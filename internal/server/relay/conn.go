// Package relay implements the connection registry and delivery engine: it
// tracks which usernames are reachable over a live connection, routes
// outbound messages to live recipients with a durable-store fallback, and
// replays stored backlog when a recipient reconnects.
package relay

import (
	"context"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// Conn is one live duplex text channel to a client. The owning session holds
// it for the lifetime of the connection; the registry keeps a non-owning
// reference while the session is active.
//
// SendText must be safe for concurrent use: other users' sessions deliver
// through it. ReceiveText blocks until inbound data arrives or the peer
// disconnects; closing the underlying transport unblocks it.
type Conn interface {
	SendText(text string) error
	ReceiveText() (string, error)
	Close() error
}

// Store is the durable-store capability the registry consumes for backlog
// replay. *messages.PostgresRepository satisfies it.
type Store interface {
	FindUndelivered(ctx context.Context, recipient string) ([]*models.Message, error)
	MarkDelivered(ctx context.Context, id string) error
}

// MessageSender persists and routes one outbound message on behalf of a
// session. services.MessageService satisfies it.
type MessageSender interface {
	Send(ctx context.Context, sender, recipient, text string) (*models.Message, error)
}
