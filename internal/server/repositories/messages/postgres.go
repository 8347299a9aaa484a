// Package messages provides the PostgreSQL-backed repository for message
// envelopes: append-only rows whose only mutable field is the delivered flag.
package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/dbx"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// PostgresRepository implements envelope storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {

	query :=
		`INSERT INTO messages (id, sender, recipient, message, delivered)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		msg.ID, msg.Sender, msg.Recipient, msg.Text, msg.Delivered).Scan(&msg.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return msg, nil
}

// FindUndelivered returns all pending envelopes addressed to recipient,
// ordered by insertion. The order is what makes backlog replay preserve a
// single sender's send sequence.
func (r *PostgresRepository) FindUndelivered(ctx context.Context, recipient string) ([]*models.Message, error) {
	query :=
		`SELECT id, sender, recipient, message, delivered, created_at FROM messages
		 WHERE recipient = $1 AND NOT delivered
		 ORDER BY seq
		 `

	return r.selectMessages(ctx, query, recipient)
}

func (r *PostgresRepository) MarkDelivered(ctx context.Context, id string) error {
	query :=
		`UPDATE messages SET delivered = true
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// FindConversation returns the messages exchanged between a and b in either
// direction, in insertion order.
func (r *PostgresRepository) FindConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	query :=
		`SELECT id, sender, recipient, message, delivered, created_at FROM messages
		 WHERE (sender = $1 AND recipient = $2) OR (sender = $2 AND recipient = $1)
		 ORDER BY seq
		 `

	return r.selectMessages(ctx, query, a, b)
}

func (r *PostgresRepository) selectMessages(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		var item models.Message
		if err := rows.Scan(
			&item.ID, &item.Sender, &item.Recipient, &item.Text, &item.Delivered, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
