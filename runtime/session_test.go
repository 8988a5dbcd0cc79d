package runtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/mocks"
	"chat-relay/repositories"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type relay struct {
	registry    *Registry
	repository  repositories.IMessageRepository
	broadcaster *Broadcaster
}

func newRelay(repository repositories.IMessageRepository) relay {
	registry := NewRegistry()
	return relay{
		registry:    registry,
		repository:  repository,
		broadcaster: newTestBroadcaster(registry, repository, newTestMetrics()),
	}
}

func (r relay) connect(t *testing.T, addr string) (*Session, *recordingConnection) {
	t.Helper()
	conn := newRecordingConnection(addr)
	session := NewSession(slog.Default(), conn, r.registry, r.repository, r.broadcaster, newTestMetrics())
	require.NoError(t, session.Open(context.Background()))
	return session, conn
}

func decodeMessages(t *testing.T, raw json.RawMessage) []event.WireMessage {
	t.Helper()
	var out []event.WireMessage
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestSession_Connect_To_Empty_Store_Receives_Empty_History(t *testing.T) {
	req := require.New(t)
	r := newRelay(repositories.NewMemoryMessageRepository())

	session, conn := r.connect(t, "c1")

	req.Equal(StateActive, session.State())
	req.Equal(1, r.registry.Count())
	frames := conn.Decoded()
	req.Len(frames, 1)
	req.Equal(event.TypeHistory, frames[0].Type)
	req.JSONEq(`[]`, string(frames[0].Data))
}

func TestSession_Post_Then_Late_Joiner_Gets_History(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := newRelay(repositories.NewMemoryMessageRepository())
	c1, conn1 := r.connect(t, "c1")

	// When C1 posts
	req.NoError(c1.Handle(ctx, []byte(`{"username":"alice","text":"hi"}`)))

	// Then the store holds exactly one message
	stored, err := r.repository.RetrieveAll(ctx)
	req.NoError(err)
	req.Len(stored, 1)
	expected := event.ToWireMessage(stored[0])
	req.Equal(event.WireMessage{Username: "alice", Message: "hi", Timestamp: expected.Timestamp}, expected)

	// And C1 receives its own message back after the history
	frames := conn1.Decoded()
	req.Len(frames, 2)
	req.Equal(event.TypeMessage, frames[1].Type)
	var echoed event.WireMessage
	req.NoError(json.Unmarshal(frames[1].Data, &echoed))
	req.Equal(expected, echoed)

	// When C2 connects afterwards, its history contains exactly that message
	_, conn2 := r.connect(t, "c2")
	frames2 := conn2.Decoded()
	req.Len(frames2, 1)
	req.Equal(event.TypeHistory, frames2[0].Type)
	req.Equal([]event.WireMessage{expected}, decodeMessages(t, frames2[0].Data))
}

func TestSession_Malformed_Payload_Keeps_Session_Active(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := newRelay(repositories.NewMemoryMessageRepository())
	session, conn := r.connect(t, "c1")

	// When a malformed payload arrives
	req.NoError(session.Handle(ctx, []byte(`{{{`)))
	req.NoError(session.Handle(ctx, []byte(`{"username":"alice"}`)))

	// Then nothing is stored or broadcast and the session is still active
	stored, err := r.repository.RetrieveAll(ctx)
	req.NoError(err)
	req.Empty(stored)
	req.Len(conn.Frames(), 1)
	req.Equal(StateActive, session.State())

	// And the client can post successfully afterwards
	req.NoError(session.Handle(ctx, []byte(`{"username":"alice","text":"back"}`)))
	stored, err = r.repository.RetrieveAll(ctx)
	req.NoError(err)
	req.Len(stored, 1)
	req.Len(conn.Frames(), 2)
}

func TestSession_History_Failure_Is_Not_Fatal(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIMessageRepository(ctrl)
	repository.EXPECT().RetrieveAll(gomock.Any()).
		Return(nil, fmt.Errorf("%w: timeout", errors.ErrStoreUnavailable)).
		Times(1)
	repository.EXPECT().Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m domain.ChatMessage) (domain.ChatMessage, error) {
			m.ID = uuid.New()
			return m, nil
		}).
		Times(1)

	registry := NewRegistry()
	metrics := newTestMetrics()
	broadcaster := newTestBroadcaster(registry, repository, metrics)
	conn := newRecordingConnection("c1")
	session := NewSession(slog.Default(), conn, registry, repository, broadcaster, metrics)

	// When history cannot be loaded
	req.NoError(session.Open(ctx))

	// Then no history is sent but the session is active and registered
	req.Empty(conn.Frames())
	req.Equal(StateActive, session.State())
	req.Equal(1, registry.Count())
	req.Equal(1.0, testutil.ToFloat64(metrics.HistoryFailures))

	// And live broadcasts still reach it
	req.NoError(session.Handle(ctx, []byte(`{"username":"alice","text":"hi"}`)))
	frames := conn.Decoded()
	req.Len(frames, 1)
	req.Equal(event.TypeMessage, frames[0].Type)
}

func TestSession_Close_Deregisters_And_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	r := newRelay(repositories.NewMemoryMessageRepository())
	session, conn := r.connect(t, "c1")
	_, other := r.connect(t, "c2")

	session.Close()
	session.Close()

	req.Equal(StateClosed, session.State())
	req.Equal(1, r.registry.Count())

	// A closed session neither submits nor receives
	req.ErrorIs(session.Handle(ctx, []byte(`{"username":"alice","text":"hi"}`)), errors.ErrSessionNotActive)
	req.ErrorIs(session.Open(ctx), errors.ErrSessionNotActive)
	before := len(conn.Frames())
	r.connect(t, "c3")
	req.NoError(r.broadcaster.Submit(ctx, []byte(`{"username":"bob","text":"still here?"}`), "c3"))
	req.Len(conn.Frames(), before)
	req.Len(other.Frames(), 2)
}

func TestSession_Close_Before_Open(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	// Deregister must not be called for a session that never registered
	session := NewSession(slog.Default(), newRecordingConnection("c1"), registry,
		repositories.NewMemoryMessageRepository(), mocks.NewMockIBroadcaster(ctrl), newTestMetrics())

	session.Close()

	req.Equal(StateClosed, session.State())
}

func TestSession_Handle_Forwards_Connection_Id(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	broadcaster := mocks.NewMockIBroadcaster(ctrl)
	registry := NewRegistry()
	session := NewSession(slog.Default(), newRecordingConnection("c1"), registry,
		repositories.NewMemoryMessageRepository(), broadcaster, newTestMetrics())
	req.NoError(session.Open(ctx))

	raw := []byte(`{"username":"alice","text":"hi"}`)
	broadcaster.EXPECT().Submit(gomock.Any(), raw, session.ID()).
		Return(errors.ErrPersistenceFailed).
		Times(1)

	// A persistence failure is logged, not returned
	req.NoError(session.Handle(ctx, raw))
	req.Equal(StateActive, session.State())
}

func TestReplayGate_Holds_Broadcasts_Until_History_Is_Sent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	conn := newRecordingConnection("c1")
	gate := newReplayGate(conn)

	inHistory := domain.ChatMessage{ID: uuid.New(), Username: "alice", Body: "already stored"}
	newer := domain.ChatMessage{ID: uuid.New(), Username: "bob", Body: "newer"}
	postedOld, err := event.NewMessagePosted(inHistory)
	req.NoError(err)
	postedNew, err := event.NewMessagePosted(newer)
	req.NoError(err)

	// Given broadcasts arrive before the history is released
	req.NoError(gate.Consume(ctx, postedOld))
	req.NoError(gate.Consume(ctx, postedNew))
	req.Empty(conn.Frames())

	// When the history is released
	req.NoError(gate.release(ctx, &event.History{Messages: []domain.ChatMessage{inHistory}}))

	// Then history comes first and duplicates are dropped
	frames := conn.Frames()
	req.Len(frames, 2)
	req.Equal(event.TypeHistory, frames[0].Type())
	req.Equal(newer, frames[1].(event.MessagePosted).Message)

	// And later events pass straight through
	req.NoError(gate.Consume(ctx, postedNew))
	req.Len(conn.Frames(), 3)
}

func TestReplayGate_Overflow(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	gate := newReplayGate(newRecordingConnection("c1"))
	posted, err := event.NewMessagePosted(domain.ChatMessage{ID: uuid.New()})
	req.NoError(err)

	for i := 0; i < maxHeldBack; i++ {
		req.NoError(gate.Consume(ctx, posted))
	}
	req.ErrorIs(gate.Consume(ctx, posted), errors.ErrSendBufferFull)
}
