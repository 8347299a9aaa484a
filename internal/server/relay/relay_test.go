package relay

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// --- shared test doubles ---

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

// fakeConn is a scriptable Conn. Sends are recorded; receives are fed
// through a channel, closing it simulates a peer disconnect.
type fakeConn struct {
	mu        sync.Mutex
	sent      []string
	sendErrAt int // fail sends once len(sent) reaches this count; -1 = never
	recv      chan string
	closed    bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendErrAt: -1, recv: make(chan string, 16)}
}

func (c *fakeConn) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErrAt >= 0 && len(c.sent) >= c.sendErrAt {
		return errors.New("broken pipe")
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) ReceiveText() (string, error) {
	text, ok := <-c.recv
	if !ok {
		return "", io.EOF
	}
	return text, nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) sentFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// fakeStore is an in-memory Store with scriptable failures.
type fakeStore struct {
	mu      sync.Mutex
	backlog []*models.Message
	findErr error
	markErr error
}

func (s *fakeStore) FindUndelivered(ctx context.Context, recipient string) ([]*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var result []*models.Message
	for _, m := range s.backlog {
		if m.Recipient == recipient && !m.Delivered {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *fakeStore) MarkDelivered(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	for _, m := range s.backlog {
		if m.ID == id {
			m.Delivered = true
			return nil
		}
	}
	return errors.New("not found")
}

func (s *fakeStore) deliveredIDs() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make(map[string]bool, len(s.backlog))
	for _, m := range s.backlog {
		result[m.ID] = m.Delivered
	}
	return result
}

// fakeSender records what the session hands off for routing+persistence.
type sentCall struct {
	sender, recipient, text string
}

type fakeSender struct {
	mu      sync.Mutex
	calls   []sentCall
	sendErr error
}

func (f *fakeSender) Send(ctx context.Context, sender, recipient, text string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sentCall{sender, recipient, text})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.Message{Sender: sender, Recipient: recipient, Text: text}, nil
}

func (f *fakeSender) recorded() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.calls...)
}
