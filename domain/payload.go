package domain

import (
	"chat-relay/errors"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// IncomingPayload is what a client posts on the realtime channel.
// Pointers distinguish a missing field from an empty one: empty strings are accepted.
type IncomingPayload struct {
	Username *string `json:"username" validate:"required"`
	Text     *string `json:"text" validate:"required"`
}

// ParsePayload decodes and validates a raw client frame.
// Every failure wraps errors.ErrMalformedPayload.
func ParsePayload(raw []byte) (IncomingPayload, error) {
	var payload IncomingPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return IncomingPayload{}, fmt.Errorf("%w: %w", errors.ErrMalformedPayload, err)
	}
	if err := validate.Struct(payload); err != nil {
		return IncomingPayload{}, fmt.Errorf("%w: %w", errors.ErrMalformedPayload, err)
	}
	return payload, nil
}

// ToMessage builds the message to be stamped and stored.
func (p IncomingPayload) ToMessage() ChatMessage {
	return ChatMessage{Username: *p.Username, Body: *p.Text}
}
