//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IMessageRepository is the append-only message log.
// RetrieveAll returns messages ascending by timestamp, append order breaking ties.
// Backend failures are reported wrapped in errors.ErrStoreUnavailable.
type IMessageRepository interface {
	Append(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error)
	RetrieveAll(ctx context.Context) ([]domain.ChatMessage, error)
	Close() error
}

// stamp fills ID and Timestamp when the caller left them unset.
func stamp(message domain.ChatMessage) domain.ChatMessage {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	}
	return message
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", errors.ErrStoreUnavailable, op, err)
}
