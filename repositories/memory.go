package repositories

import (
	"chat-relay/domain"
	"context"
	"slices"
	"sync"
)

// MemoryMessageRepository keeps the log in process memory.
// Nothing survives a restart; it backs tests and STORE_BACKEND=memory.
type MemoryMessageRepository struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{}
}

func (m *MemoryMessageRepository) Append(_ context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	message = stamp(message)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return message, nil
}

func (m *MemoryMessageRepository) RetrieveAll(_ context.Context) ([]domain.ChatMessage, error) {
	m.mu.RLock()
	messages := slices.Clone(m.messages)
	m.mu.RUnlock()
	slices.SortStableFunc(messages, byTimestamp)
	return messages, nil
}

func (m *MemoryMessageRepository) Close() error { return nil }

func byTimestamp(a, b domain.ChatMessage) int {
	return a.Timestamp.Compare(b.Timestamp)
}
