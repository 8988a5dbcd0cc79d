package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/repositories"
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
)

type State int

const (
	StateConnecting State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	default:
		return "closed"
	}
}

// Session drives one connection through Connecting -> Active -> Closed.
// Handle is expected to be called from a single goroutine, in receipt order.
type Session struct {
	mu    sync.Mutex
	state State
	id    domain.ConnectionID

	conn        contract.Connection
	registry    contract.IRegistry
	repository  repositories.IMessageRepository
	broadcaster contract.IBroadcaster
	metrics     *observability.Metrics
	log         *slog.Logger
}

func NewSession(log *slog.Logger, conn contract.Connection, registry contract.IRegistry,
	repository repositories.IMessageRepository, broadcaster contract.IBroadcaster,
	metrics *observability.Metrics) *Session {
	return &Session{
		state:       StateConnecting,
		conn:        conn,
		registry:    registry,
		repository:  repository,
		broadcaster: broadcaster,
		metrics:     metrics,
		log:         log,
	}
}

// Open registers the connection and replays the history to it.
// A failed replay is logged and the session stays Active.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return errors.ErrSessionNotActive
	}
	gate := newReplayGate(s.conn)
	s.id = s.registry.Register(gate)
	s.state = StateActive
	s.mu.Unlock()

	s.metrics.LiveConnections.Inc()
	log := s.log.With("connection_id", s.id, "remote_addr", s.conn.RemoteAddr())
	log.Info("Client connected")

	history, err := s.repository.RetrieveAll(ctx)
	if err != nil {
		s.metrics.HistoryFailures.Inc()
		log.Error("History unavailable, continuing without it", "error", err)
		if err = gate.release(ctx, nil); err != nil {
			log.Warn("Failed to flush held back messages", "error", err)
		}
		return nil
	}

	if err = gate.release(ctx, &event.History{Messages: history}); err != nil {
		s.metrics.HistoryFailures.Inc()
		log.Warn("Failed to deliver history", "count", len(history), "error", err)
		return nil
	}
	log.Debug("History delivered", "count", len(history))
	return nil
}

// Handle forwards one inbound payload to the broadcaster.
// This is the logging boundary for submit errors: none of them ends the session.
func (s *Session) Handle(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	state, id := s.state, s.id
	s.mu.Unlock()
	if state != StateActive {
		return errors.ErrSessionNotActive
	}

	err := s.broadcaster.Submit(ctx, raw, id)
	switch {
	case err == nil:
	case stderrors.Is(err, errors.ErrMalformedPayload):
		s.log.Warn("Discarding malformed payload", "connection_id", id, "error", err)
	default:
		s.log.Error("Message not broadcast", "connection_id", id, "error", err)
	}
	return nil
}

// Close deregisters the connection. Calling it again is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	wasActive := s.state == StateActive
	s.state = StateClosed
	id := s.id
	s.mu.Unlock()

	if wasActive {
		s.registry.Deregister(id)
		s.metrics.LiveConnections.Dec()
		s.log.Info("Client disconnected", "connection_id", id)
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ID() domain.ConnectionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}
