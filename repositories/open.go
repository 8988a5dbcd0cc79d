package repositories

import (
	"chat-relay/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	BackendBadger = "badger"
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Options struct {
	Backend        string
	BadgerFilepath string
	MongoURI       string
	MongoDatabase  string
	RedisAddr      string
	ConnectTimeout time.Duration
}

// Open establishes the configured backend. Any error here means the relay
// cannot start.
func Open(ctx context.Context, opts Options, log *slog.Logger) (IMessageRepository, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	log.Info("Opening message store", "backend", opts.Backend)
	switch opts.Backend {
	case BackendBadger:
		db, err := badger.Open(badger.DefaultOptions(opts.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, unavailable("open badger", err)
		}
		repo, err := NewBadgerMessageRepository(db, log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return repo, nil
	case BackendMongo:
		return NewMongoMessageRepository(ctx, opts.MongoURI, opts.MongoDatabase, log)
	case BackendRedis:
		return NewRedisMessageRepository(ctx, opts.RedisAddr, log)
	case BackendMemory:
		return NewMemoryMessageRepository(), nil
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownBackend, opts.Backend)
	}
}
