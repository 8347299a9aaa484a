package relay

import (
	"context"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
)

// Session is the per-connection control loop. It registers the connection,
// reads inbound frames, hands each one to the message sender, and releases
// the registry slot on every exit path.
type Session struct {
	username string
	conn     Conn
	registry *Registry
	sender   MessageSender
	logger   logging.Logger
}

func NewSession(username string, conn Conn, registry *Registry, sender MessageSender, logger logging.Logger) *Session {
	return &Session{
		username: username,
		conn:     conn,
		registry: registry,
		sender:   sender,
		logger:   logger.With("module", "session", "username", username),
	}
}

// Run drives the session from connect to termination. It returns
// common.ErrUsernameTaken when the username is already registered (nothing
// was registered, the caller signals the distinguished close status),
// common.ErrMalformedFrame on a protocol error, a wrapped store error when
// backlog replay failed, and nil when the peer disconnected.
//
// The registry slot is released on every path out of the active loop.
func (s *Session) Run(ctx context.Context) error {
	if err := s.registry.Connect(ctx, s.username, s.conn); err != nil {
		return err
	}
	defer s.registry.Disconnect(s.username)

	for {
		text, err := s.conn.ReceiveText()
		if err != nil {
			// Peer close and transport failure both end this session only.
			s.logger.Debug(ctx, "connection closed", "error", err)
			return nil
		}

		in, err := decodeInbound(text)
		if err != nil {
			s.logger.Warn(ctx, "protocol error", "error", err)
			return err
		}

		if _, err := s.sender.Send(ctx, s.username, in.Recipient, in.Message); err != nil {
			// One failed exchange does not take the session down.
			s.logger.Error(ctx, "message send failed", "recipient", in.Recipient, "error", err)
		}
	}
}
