package ws

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests and runs one Session per websocket.
type Handler struct {
	log         *slog.Logger
	registry    contract.IRegistry
	repository  repositories.IMessageRepository
	broadcaster contract.IBroadcaster
	metrics     *observability.Metrics
	opts        Options
	upgrader    websocket.Upgrader

	mu           sync.Mutex
	shuttingDown bool
	sessions     sync.WaitGroup
}

func NewHandler(log *slog.Logger, registry contract.IRegistry,
	repository repositories.IMessageRepository, broadcaster contract.IBroadcaster,
	metrics *observability.Metrics, opts Options) *Handler {
	policy := NewOriginPolicy(opts.AllowedOrigins, log)
	return &Handler{
		log:         log,
		registry:    registry,
		repository:  repository,
		broadcaster: broadcaster,
		metrics:     metrics,
		opts:        opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     policy.checkOrigin,
		},
	}
}

// ServeHTTP blocks for the whole life of the connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.admit() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.sessions.Done()

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	conn := NewConnection(wsConn, r.RemoteAddr, h.opts, h.log)
	session := runtime.NewSession(h.log, conn, h.registry, h.repository, h.broadcaster, h.metrics)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		conn.WritePump()
	}()

	_ = session.Open(ctx)
	// Shutdown may have run its close pass before this session registered.
	if h.closing() {
		_ = conn.Close()
	}
	conn.ReadPump(func(raw []byte) {
		_ = session.Handle(ctx, raw)
	})

	session.Close()
	_ = conn.Close()
	<-writerDone
}

// admit counts a new session, unless Shutdown has started.
func (h *Handler) admit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.shuttingDown {
		return false
	}
	h.sessions.Add(1)
	return true
}

func (h *Handler) closing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shuttingDown
}

// Shutdown refuses new sessions, closes every live connection and waits for
// their sessions to end or for ctx to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.shuttingDown = true
	h.mu.Unlock()

	closed := 0
	h.registry.ForEachLive(func(_ domain.ConnectionID, conn contract.Connection) {
		_ = conn.Close()
		closed++
	})
	h.log.Info("Closing client connections", "count", closed)

	done := make(chan struct{})
	go func() {
		h.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
