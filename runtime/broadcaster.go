package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const defaultSendTimeout = 5 * time.Second

// Broadcaster persists accepted messages then fans them out to the registry.
// Nothing is broadcast unless the store accepted the message first.
type Broadcaster struct {
	log         *slog.Logger
	registry    contract.IRegistry
	repository  repositories.IMessageRepository
	clock       *domain.Clock
	metrics     *observability.Metrics
	sendTimeout time.Duration

	// Serializes stamping and appending so store order is timestamp order.
	appendMu sync.Mutex
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry,
	repository repositories.IMessageRepository, clock *domain.Clock,
	metrics *observability.Metrics, sendTimeout time.Duration) *Broadcaster {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Broadcaster{
		log:         log,
		registry:    registry,
		repository:  repository,
		clock:       clock,
		metrics:     metrics,
		sendTimeout: sendTimeout,
	}
}

// Submit parses, stores and broadcasts one raw client payload.
// It fails with errors.ErrMalformedPayload or errors.ErrPersistenceFailed;
// per-connection delivery failures are logged and never returned.
func (b *Broadcaster) Submit(ctx context.Context, raw []byte, from domain.ConnectionID) error {
	payload, err := domain.ParsePayload(raw)
	if err != nil {
		b.metrics.Submissions.WithLabelValues(observability.OutcomeMalformed).Inc()
		return err
	}

	stored, err := b.persist(ctx, payload.ToMessage())
	if err != nil {
		b.metrics.Submissions.WithLabelValues(observability.OutcomePersistenceFailed).Inc()
		return fmt.Errorf("%w: %w", errors.ErrPersistenceFailed, err)
	}
	b.metrics.Submissions.WithLabelValues(observability.OutcomeAccepted).Inc()

	b.log.Debug("Message stored", "id", stored.ID, "from", from, "username", stored.Username)
	b.Fanout(context.WithoutCancel(ctx), stored)
	return nil
}

func (b *Broadcaster) persist(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	b.appendMu.Lock()
	defer b.appendMu.Unlock()
	message.Timestamp = b.clock.Now()
	return b.repository.Append(ctx, message)
}

// Fanout pushes one stored message to every connection live at snapshot time,
// the sender included. One failing connection never stops the others.
func (b *Broadcaster) Fanout(ctx context.Context, message domain.ChatMessage) {
	evt, err := event.NewMessagePosted(message)
	if err != nil {
		b.log.Error("Unable to encode message event", "id", message.ID, "error", err)
		return
	}

	b.registry.ForEachLive(func(id domain.ConnectionID, conn contract.Connection) {
		if err := b.deliver(ctx, conn, evt); err != nil {
			b.metrics.SendFailures.Inc()
			b.log.Warn("Failed to deliver message",
				"connection_id", id,
				"remote_addr", conn.RemoteAddr(),
				"message_id", message.ID,
				"error", err)
			return
		}
		b.metrics.Delivered.Inc()
	})
}

func (b *Broadcaster) deliver(ctx context.Context, conn contract.Connection, evt event.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered from panic in consume: %v", r)
		}
	}()
	sendCtx, cancel := context.WithTimeout(ctx, b.sendTimeout)
	defer cancel()
	return conn.Consume(sendCtx, evt)
}
