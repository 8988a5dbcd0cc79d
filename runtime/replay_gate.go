package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	stderrors "errors"
	"sync"

	"github.com/google/uuid"
)

const maxHeldBack = 256

// replayGate wraps a freshly registered connection until its history is sent.
// Broadcasts reaching it earlier are held back, then flushed after the history
// frame, minus the ones the history already contains.
type replayGate struct {
	contract.Connection

	mu       sync.Mutex
	held     []event.DomainEvent
	released bool
}

func newReplayGate(conn contract.Connection) *replayGate {
	return &replayGate{Connection: conn}
}

func (g *replayGate) Consume(ctx context.Context, e event.DomainEvent) error {
	g.mu.Lock()
	if !g.released {
		defer g.mu.Unlock()
		if len(g.held) >= maxHeldBack {
			return errors.ErrSendBufferFull
		}
		g.held = append(g.held, e)
		return nil
	}
	g.mu.Unlock()
	return g.Connection.Consume(ctx, e)
}

// release sends history (when not nil) then everything held back.
// The lock is held throughout so concurrent broadcasts queue behind the flush.
func (g *replayGate) release(ctx context.Context, history *event.History) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var errs []error
	seen := make(map[uuid.UUID]struct{})
	if history != nil {
		for _, m := range history.Messages {
			seen[m.ID] = struct{}{}
		}
		if err := g.Connection.Consume(ctx, *history); err != nil {
			errs = append(errs, err)
		}
	}
	for _, e := range g.held {
		if posted, ok := e.(event.MessagePosted); ok {
			if _, dup := seen[posted.Message.ID]; dup {
				continue
			}
		}
		if err := g.Connection.Consume(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	g.held = nil
	g.released = true
	return stderrors.Join(errs...)
}
