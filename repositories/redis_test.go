package repositories

import (
	"chat-relay/domain"
	"chat-relay/errors"
	pb "chat-relay/proto/storage"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func openRedis(t *testing.T) (*RedisMessageRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	repository, err := NewRedisMessageRepository(context.Background(), server.Addr(), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close() })
	return repository, server
}

func Test_Redis_Append_And_Retrieve(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, _ := openRedis(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	messages := []domain.ChatMessage{
		{ID: uuid.New(), Username: "alice", Body: "first", Timestamp: at},
		{ID: uuid.New(), Username: "bob", Body: "second", Timestamp: at.Add(time.Second)},
	}
	for _, m := range messages {
		stored, err := repository.Append(ctx, m)
		req.NoError(err)
		req.Equal(m, stored)
	}

	fetched, err := repository.RetrieveAll(ctx)
	req.NoError(err)
	req.Equal(messages, fetched)
}

func Test_Redis_Orders_By_Timestamp_Keeping_List_Order_On_Ties(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, _ := openRedis(t)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for _, m := range []domain.ChatMessage{
		{Body: "late", Timestamp: at.Add(time.Second)},
		{Body: "tie a", Timestamp: at},
		{Body: "tie b", Timestamp: at},
		{Body: "tie c", Timestamp: at},
	} {
		_, err := repository.Append(ctx, m)
		req.NoError(err)
	}

	fetched, err := repository.RetrieveAll(ctx)
	req.NoError(err)
	req.Equal([]string{"tie a", "tie b", "tie c", "late"}, bodies(fetched))
}

func Test_Redis_Skips_Unreadable_Records(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, server := openRedis(t)

	_, err := repository.Append(ctx, domain.ChatMessage{Username: "alice", Body: "readable"})
	req.NoError(err)

	// Given a record that is not protobuf and one with a broken id
	_, err = server.RPush(messageListKey, "garbage")
	req.NoError(err)
	brokenID, err := proto.Marshal(&pb.Message{Id: "not-a-uuid", Username: "bob", Message: "broken"})
	req.NoError(err)
	_, err = server.RPush(messageListKey, string(brokenID))
	req.NoError(err)

	fetched, err := repository.RetrieveAll(ctx)

	req.NoError(err)
	req.Equal([]string{"readable"}, bodies(fetched))
}

func Test_Redis_Unreachable_Server(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository, server := openRedis(t)

	server.Close()

	_, err := repository.Append(ctx, domain.ChatMessage{Username: "alice", Body: "lost"})
	req.ErrorIs(err, errors.ErrStoreUnavailable)
	_, err = repository.RetrieveAll(ctx)
	req.ErrorIs(err, errors.ErrStoreUnavailable)
}

func Test_Open_Redis_Backend_Fails_Fast(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()

	_, err := Open(context.Background(), Options{
		Backend:        BackendRedis,
		RedisAddr:      addr,
		ConnectTimeout: time.Second,
	}, slog.Default())

	require.ErrorIs(t, err, errors.ErrStoreUnavailable)
}
