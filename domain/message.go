// Package domain contains core concepts of the chat relay.
// Messages are immutable once stamped and stored.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents an immutable chat message.
// ID and Timestamp are assigned server side, never by the client.
type ChatMessage struct {
	ID        uuid.UUID
	Username  string
	Body      string
	Timestamp time.Time
}

// ConnectionID identifies one live connection in the registry.
type ConnectionID string

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}
