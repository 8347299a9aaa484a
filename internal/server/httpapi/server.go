// Package httpapi exposes the relay over HTTP: the user directory and
// message history endpoints, and the WebSocket endpoint that feeds the
// session loop.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/dmitrijs2005/chatrelay/internal/server/relay"
	"github.com/gorilla/websocket"
)

// UserDirectory is the user-service surface the API consumes.
// services.UserService satisfies it.
type UserDirectory interface {
	Register(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// MessageExchange is the message-service surface the API consumes.
// services.MessageService satisfies it.
type MessageExchange interface {
	Send(ctx context.Context, sender, recipient, text string) (*models.Message, error)
	Conversation(ctx context.Context, a, b string) ([]*models.Message, error)
}

type Server struct {
	address         string
	logger          logging.Logger
	users           UserDirectory
	messages        MessageExchange
	registry        *relay.Registry
	sendTimeout     time.Duration
	shutdownTimeout time.Duration
	upgrader        websocket.Upgrader
}

func NewServer(address string, l logging.Logger, users UserDirectory, messages MessageExchange,
	registry *relay.Registry, sendTimeout, shutdownTimeout time.Duration) *Server {
	return &Server{
		address:         address,
		logger:          l.With("module", "http_server"),
		users:           users,
		messages:        messages,
		registry:        registry,
		sendTimeout:     sendTimeout,
		shutdownTimeout: shutdownTimeout,
	}
}

// Handler builds the route table. Split from Run so tests can mount it on
// httptest.Server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /create-users/", s.handleCreateUser)
	mux.HandleFunc("GET /get-users/", s.handleGetUsers)
	mux.HandleFunc("GET /user-exists/{username}", s.handleUserExists)
	mux.HandleFunc("POST /send-messages/", s.handleSendMessage)
	mux.HandleFunc("GET /get-messages/", s.handleGetMessages)
	mux.HandleFunc("GET /ws/{username}", s.handleWebsocket)
	return mux
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
