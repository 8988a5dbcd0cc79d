package repositories

import (
	"chat-relay/domain"
	"context"
	"log/slog"
	"slices"

	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/proto"
)

const messageListKey = "chat:messages"

// RedisMessageRepository appends protobuf records to a single list.
// RPUSH is atomic, so a record is either fully visible to LRANGE or absent.
type RedisMessageRepository struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewRedisMessageRepository(ctx context.Context, addr string, log *slog.Logger) (*RedisMessageRepository, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, unavailable("ping", err)
	}
	return &RedisMessageRepository{rdb: rdb, log: log}, nil
}

func (r *RedisMessageRepository) Append(ctx context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	message = stamp(message)
	b, err := proto.Marshal(fromChatMessage(message))
	if err != nil {
		return domain.ChatMessage{}, err
	}
	if err = r.rdb.RPush(ctx, messageListKey, b).Err(); err != nil {
		return domain.ChatMessage{}, unavailable("rpush", err)
	}
	return message, nil
}

func (r *RedisMessageRepository) RetrieveAll(ctx context.Context) ([]domain.ChatMessage, error) {
	vals, err := r.rdb.LRange(ctx, messageListKey, 0, -1).Result()
	if err != nil {
		return nil, unavailable("lrange", err)
	}
	return decodeRecords(vals, r.log), nil
}

// decodeRecords skips records it cannot read and orders the rest by
// timestamp, list order breaking ties.
func decodeRecords(vals []string, log *slog.Logger) []domain.ChatMessage {
	messages := make([]domain.ChatMessage, 0, len(vals))
	for i, v := range vals {
		message, err := decodeMessage([]byte(v))
		if err != nil {
			log.Warn("Skipping unreadable history record", "index", i, "error", err)
			continue
		}
		messages = append(messages, message)
	}
	slices.SortStableFunc(messages, byTimestamp)
	return messages
}

func (r *RedisMessageRepository) Close() error {
	return r.rdb.Close()
}
