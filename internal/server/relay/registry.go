package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/logging"
)

// ErrEmptyUsername rejects a connect attempt with an empty username.
var ErrEmptyUsername = errors.New("empty username")

// Registry is the authoritative in-memory record of which usernames
// currently have an open connection. A username present in the map implies
// its connection is open and owned by a live session.
//
// All operations, including the insert-then-replay sequence inside Connect,
// are serialized by a single mutex. Holding the lock across replay
// guarantees a concurrent Route cannot observe the new handle until the
// backlog has been fully replayed (or the connect aborted), so nothing sent
// after connect can overtake stored messages.
type Registry struct {
	mu     sync.Mutex
	conns  map[string]Conn
	store  Store
	logger logging.Logger
}

func NewRegistry(store Store, logger logging.Logger) *Registry {
	return &Registry{
		conns:  make(map[string]Conn),
		store:  store,
		logger: logger.With("module", "registry"),
	}
}

// Connect registers conn under username and replays the stored backlog over
// it. On a username conflict it returns common.ErrUsernameTaken without
// disturbing the existing registered handle. Any other error is fatal for
// this connect attempt: the entry is removed again and the caller must close
// the transport.
//
// An envelope is marked delivered only after its send succeeded; if the
// handle breaks mid-replay the remaining envelopes stay pending for the next
// reconnect.
func (r *Registry) Connect(ctx context.Context, username string, conn Conn) error {
	if username == "" {
		return ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[username]; ok {
		return common.ErrUsernameTaken
	}
	r.conns[username] = conn

	backlog, err := r.store.FindUndelivered(ctx, username)
	if err != nil {
		delete(r.conns, username)
		return fmt.Errorf("backlog query: %w", err)
	}

	for _, msg := range backlog {
		if err := conn.SendText(encodeOutbound(msg.Sender, msg.Text)); err != nil {
			delete(r.conns, username)
			return fmt.Errorf("backlog send: %w", err)
		}
		if err := r.store.MarkDelivered(ctx, msg.ID); err != nil {
			delete(r.conns, username)
			return fmt.Errorf("backlog mark delivered: %w", err)
		}
	}

	r.logger.Info(ctx, "user connected", "username", username, "replayed", len(backlog), "online", len(r.conns))
	return nil
}

// Disconnect removes the username's entry if present. Idempotent: calling it
// for an unregistered username is a no-op.
func (r *Registry) Disconnect(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[username]; ok {
		delete(r.conns, username)
		r.logger.Info(context.Background(), "user disconnected", "username", username, "online", len(r.conns))
	}
}

// Lookup returns the live handle registered for username, if any.
func (r *Registry) Lookup(username string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[username]
	return conn, ok
}
