// Package event defines what the relay pushes to connected clients.
package event

import (
	"chat-relay/domain"
	"encoding/json"
)

const (
	TypeHistory = "history"
	TypeMessage = "message"
)

// DomainEvent is anything a connection can consume and write on the wire.
type DomainEvent interface {
	Type() string
	Encode() ([]byte, error)
}

// History is sent once, to a single connection, right after it joins.
type History struct {
	Messages []domain.ChatMessage
}

func (h History) Type() string { return TypeHistory }

func (h History) Encode() ([]byte, error) {
	data := ToWireMessages(h.Messages)
	return json.Marshal(frame[[]WireMessage]{Type: TypeHistory, Data: data})
}

// MessagePosted is fanned out to every live connection.
// The frame is encoded once by NewMessagePosted and shared by all recipients.
type MessagePosted struct {
	Message domain.ChatMessage
	encoded []byte
}

func NewMessagePosted(message domain.ChatMessage) (MessagePosted, error) {
	e := MessagePosted{Message: message}
	b, err := e.Encode()
	if err != nil {
		return MessagePosted{}, err
	}
	e.encoded = b
	return e, nil
}

func (m MessagePosted) Type() string { return TypeMessage }

func (m MessagePosted) Encode() ([]byte, error) {
	if m.encoded != nil {
		return m.encoded, nil
	}
	return json.Marshal(frame[WireMessage]{Type: TypeMessage, Data: ToWireMessage(m.Message)})
}

type frame[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}
