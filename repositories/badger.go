package repositories

import (
	"chat-relay/domain"
	pb "chat-relay/proto/storage"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
)

const (
	messagePrefix   = "msg:"
	sequenceKey     = "seq:messages"
	sequenceLeaseNb = 128
)

type BadgerMessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

// NewBadgerMessageRepository takes ownership of db: Close releases it.
func NewBadgerMessageRepository(db *badger.DB, log *slog.Logger) (*BadgerMessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceLeaseNb)
	if err != nil {
		return nil, unavailable("lease sequence", err)
	}
	return &BadgerMessageRepository{db: db, seq: seq, log: log}, nil
}

// Append persists a message in a single badger transaction.
// The key is formatted as "msg:{timestamp_padded}:{sequence_padded}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Keep append order between messages stamped within the same millisecond.
func (m *BadgerMessageRepository) Append(_ context.Context, message domain.ChatMessage) (domain.ChatMessage, error) {
	message = stamp(message)
	n, err := m.seq.Next()
	if err != nil {
		return domain.ChatMessage{}, unavailable("next sequence", err)
	}
	key := fmt.Sprintf("%s%019d:%019d", messagePrefix, message.Timestamp.UnixNano(), n)
	bytes, err := proto.Marshal(fromChatMessage(message))
	if err != nil {
		return domain.ChatMessage{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return domain.ChatMessage{}, unavailable("append", err)
	}
	return message, nil
}

func (m *BadgerMessageRepository) RetrieveAll(_ context.Context) ([]domain.ChatMessage, error) {
	messages, err := ScanMessages(m.db)
	if err != nil {
		return nil, unavailable("retrieve", err)
	}
	m.log.Debug("History loaded from badger", "count", len(messages))
	return messages, nil
}

// ScanMessages walks the message prefix forward.
// Thanks to the padded timestamp in the key, messages are naturally sorted by time.
// It only reads, so it also works on a database opened read-only.
func ScanMessages(db *badger.DB) ([]domain.ChatMessage, error) {
	var byteMessages [][]byte
	err := db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			value, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			byteMessages = append(byteMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, 0, len(byteMessages))
	for _, b := range byteMessages {
		message, err := decodeMessage(b)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (m *BadgerMessageRepository) Close() error {
	releaseErr := m.seq.Release()
	if err := m.db.Close(); err != nil {
		return err
	}
	return releaseErr
}

func fromChatMessage(message domain.ChatMessage) *pb.Message {
	return &pb.Message{
		Id:       message.ID.String(),
		Username: message.Username,
		Message:  message.Body,
		At:       message.Timestamp.UnixNano(),
	}
}

func toChatMessage(messagePb *pb.Message) (domain.ChatMessage, error) {
	parsedID, err := uuid.Parse(messagePb.GetId())
	if err != nil {
		return domain.ChatMessage{}, err
	}
	return domain.ChatMessage{
		ID:        parsedID,
		Username:  messagePb.GetUsername(),
		Body:      messagePb.GetMessage(),
		Timestamp: time.Unix(0, messagePb.GetAt()).UTC(),
	}, nil
}

// decodeMessage reads one stored record, as written by badger and redis.
func decodeMessage(b []byte) (domain.ChatMessage, error) {
	var messagePb pb.Message
	if err := proto.Unmarshal(b, &messagePb); err != nil {
		return domain.ChatMessage{}, err
	}
	return toChatMessage(&messagePb)
}
