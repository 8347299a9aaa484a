package messages

import (
	"context"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// Repository is the durable envelope store. Create appends; FindUndelivered
// returns pending envelopes for a recipient in insertion order; MarkDelivered
// flips the delivered flag of a single envelope.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	FindUndelivered(ctx context.Context, recipient string) ([]*models.Message, error)
	MarkDelivered(ctx context.Context, id string) error
	FindConversation(ctx context.Context, a, b string) ([]*models.Message, error)
}
