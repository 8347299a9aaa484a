package models

import "time"

// Message is a persisted envelope: one message, its parties, and delivery
// state. Envelopes are append-only; after insertion only the Delivered flag
// may transition, and only from false to true.
type Message struct {
	ID        string
	Sender    string
	Recipient string
	Text      string
	Delivered bool
	CreatedAt time.Time
}
