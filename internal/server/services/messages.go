package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/dmitrijs2005/chatrelay/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LiveRouter attempts to hand a message to the recipient's live connection.
// relay.Router satisfies it.
type LiveRouter interface {
	Route(ctx context.Context, sender, recipient, text string) bool
}

// MessageService routes outbound messages and records every envelope. A
// message that could not be handed to a live connection is persisted
// undelivered and replayed on the recipient's next connect.
type MessageService struct {
	rm     repomanager.RepositoryManager
	router LiveRouter
}

func NewMessageService(rm repomanager.RepositoryManager, router LiveRouter) *MessageService {
	return &MessageService{rm: rm, router: router}
}

// Send attempts live delivery and persists the resulting envelope, delivered
// flag included. The envelope is stored on both outcomes: delivered messages
// as history, undelivered ones as replayable backlog.
func (s *MessageService) Send(ctx context.Context, sender, recipient, text string) (*models.Message, error) {

	if sender == "" || recipient == "" {
		return nil, common.ErrorValidation
	}

	delivered := s.router.Route(ctx, sender, recipient, text)

	msg := &models.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Recipient: recipient,
		Text:      text,
		Delivered: delivered,
	}

	msg, err := s.rm.Messages().Create(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("error saving message: %w", err)
	}

	return msg, nil
}

// Conversation returns the message history between two users, both
// directions, in storage order.
func (s *MessageService) Conversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	result, err := s.rm.Messages().FindConversation(ctx, a, b)
	if err != nil {
		return nil, fmt.Errorf("error loading conversation: %w", err)
	}
	return result, nil
}
