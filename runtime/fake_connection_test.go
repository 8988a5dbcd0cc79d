package runtime

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	"encoding/json"
	"sync"
)

// recordingConnection keeps every frame it is asked to deliver.
type recordingConnection struct {
	mu     sync.Mutex
	addr   string
	frames []event.DomainEvent
	closed bool
	fail   error
}

func newRecordingConnection(addr string) *recordingConnection {
	return &recordingConnection{addr: addr}
}

func (c *recordingConnection) Consume(_ context.Context, e event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return c.fail
	}
	if c.closed {
		return errors.ErrConnectionClosed
	}
	c.frames = append(c.frames, e)
	return nil
}

func (c *recordingConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConnection) RemoteAddr() string { return c.addr }

func (c *recordingConnection) Frames() []event.DomainEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.DomainEvent(nil), c.frames...)
}

type wireFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (c *recordingConnection) Decoded() []wireFrame {
	var out []wireFrame
	for _, e := range c.Frames() {
		b, err := e.Encode()
		if err != nil {
			panic(err)
		}
		var f wireFrame
		if err := json.Unmarshal(b, &f); err != nil {
			panic(err)
		}
		out = append(out, f)
	}
	return out
}
