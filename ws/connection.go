package ws

import (
	"chat-relay/domain/event"
	"chat-relay/errors"
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection is one websocket peer. Outgoing frames go through a bounded
// queue drained by WritePump; a peer that lets the queue fill up is closed.
type Connection struct {
	conn *websocket.Conn
	send chan []byte
	addr string
	opts Options
	log  *slog.Logger

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewConnection(conn *websocket.Conn, addr string, opts Options, log *slog.Logger) *Connection {
	return &Connection{
		conn: conn,
		send: make(chan []byte, opts.BufferSize),
		addr: addr,
		opts: opts,
		log:  log.With("remote_addr", addr),
	}
}

func (c *Connection) RemoteAddr() string { return c.addr }

// Consume queues the encoded event without ever blocking.
func (c *Connection) Consume(_ context.Context, e event.DomainEvent) error {
	frame, err := e.Encode()
	if err != nil {
		return err
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return errors.ErrConnectionClosed
	}
	select {
	case c.send <- frame:
		c.mu.RUnlock()
		return nil
	default:
		c.mu.RUnlock()
	}

	c.log.Warn("Send buffer full, closing connection", "capacity", cap(c.send))
	_ = c.Close()
	return errors.ErrSendBufferFull
}

// Close stops accepting frames. WritePump then sends a close frame and
// releases the socket. Safe to call more than once.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
	return nil
}

// ReadPump hands every inbound data frame to handle, in receipt order,
// until the peer disconnects or stops answering pings.
func (c *Connection) ReadPump(handle func(raw []byte)) {
	defer c.closeSocket()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait)); err != nil {
		c.log.Warn("Error setting initial read deadline", "error", err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		handle(raw)
	}
}

// WritePump drains the send queue and keeps the peer alive with pings.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.closeSocket()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait)); err != nil {
				c.log.Warn("Error setting write deadline", "error", err)
				return
			}
			if !ok {
				c.writeClose()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Warn("Error writing message", "error", err)
				}
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Warn("Error writing ping", "error", err)
				}
				return
			}
		}
	}
}

func (c *Connection) writeClose() {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteMessage(websocket.CloseMessage, msg); err != nil && !isExpectedCloseError(err) {
		c.log.Debug("Error writing close message", "error", err)
	}
}

func (c *Connection) closeSocket() {
	if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
		c.log.Debug("Error closing socket", "error", err)
	}
}

func (c *Connection) logReadError(err error) {
	switch {
	case stderrors.Is(err, websocket.ErrReadLimit):
		c.log.Warn("Message exceeded maximum size", "limit", c.opts.MaxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		c.log.Debug("Peer closed connection", "reason", err)
	case stderrors.Is(err, io.EOF), isExpectedCloseError(err):
		c.log.Debug("Connection closed", "reason", err)
	default:
		c.log.Warn("Websocket read error", "error", err)
	}
}

// isExpectedCloseError reports errors that only mean the socket is already gone.
func isExpectedCloseError(err error) bool {
	if err == nil || stderrors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "use of closed network connection") ||
		strings.Contains(msg, "broken pipe")
}
