package relay

import (
	"context"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
)

// Router attempts live delivery of a message through the registry.
type Router struct {
	registry *Registry
	logger   logging.Logger
}

func NewRouter(registry *Registry, logger logging.Logger) *Router {
	return &Router{
		registry: registry,
		logger:   logger.With("module", "router"),
	}
}

// Route hands text to the recipient's live connection and reports whether
// the hand-off succeeded. An offline recipient and a broken handle both
// yield false: the caller persists the envelope undelivered and it becomes
// eligible for replay on the recipient's next connect. Delivery is
// fire-and-forget; Route never waits for an acknowledgement.
func (rt *Router) Route(ctx context.Context, sender, recipient, text string) bool {
	conn, ok := rt.registry.Lookup(recipient)
	if !ok {
		return false
	}

	if err := conn.SendText(encodeOutbound(sender, text)); err != nil {
		rt.logger.Warn(ctx, "live send failed, deferring to store", "recipient", recipient, "error", err)
		return false
	}

	return true
}
