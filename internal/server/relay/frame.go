package relay

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/chatrelay/internal/common"
)

// Inbound is the payload a connected client sends: the recipient username
// and the message text.
type Inbound struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// Outbound is the payload delivered to a live recipient.
type Outbound struct {
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

// decodeInbound parses one inbound frame. Anything that is not a JSON object
// with a non-empty recipient and a message field is a protocol error. An
// empty message string is allowed; an absent message key is not.
func decodeInbound(text string) (*Inbound, error) {
	var raw struct {
		Recipient *string `json:"recipient"`
		Message   *string `json:"message"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedFrame, err)
	}
	if raw.Recipient == nil || *raw.Recipient == "" {
		return nil, fmt.Errorf("%w: missing recipient", common.ErrMalformedFrame)
	}
	if raw.Message == nil {
		return nil, fmt.Errorf("%w: missing message", common.ErrMalformedFrame)
	}
	return &Inbound{Recipient: *raw.Recipient, Message: *raw.Message}, nil
}

// encodeOutbound renders the frame sent to a live recipient. Marshalling a
// struct of two strings cannot fail.
func encodeOutbound(sender, text string) string {
	b, _ := json.Marshal(Outbound{Sender: sender, Message: text})
	return string(b)
}
