package internal

import (
	"chat-relay/repositories"
	"chat-relay/ws"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Host                 string        `env:"HOST"`
	Port                 int           `env:"PORT,default=3000"`
	StoreBackend         string        `env:"STORE_BACKEND,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/chat"`
	MongoURI             string        `env:"MONGO_URI,default=mongodb://chat-db:27017"`
	MongoDatabase        string        `env:"MONGO_DATABASE,default=chatdb"`
	RedisAddr            string        `env:"REDIS_ADDR,default=localhost:6379"`
	ConnectTimeout       time.Duration `env:"CONNECT_TIMEOUT,default=10s"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	MaxMessageSize       int           `env:"MAX_MESSAGE_SIZE,default=65536"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s"`
	PingInterval         time.Duration `env:"PING_INTERVAL,default=54s"`
	WriteWait            time.Duration `env:"WRITE_WAIT,default=10s"`
	SendTimeout          time.Duration `env:"SEND_TIMEOUT,default=5s"`
	AllowedOrigins       string        `env:"ALLOWED_ORIGINS,default=*"`
	StatusInterval       time.Duration `env:"STATUS_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=1s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
}

// LoadConfig reads the environment, after merging the given .env files when
// they exist. Variables already set in the environment win.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("loading %s: %w", f, err)
		}
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, err
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case repositories.BackendBadger, repositories.BackendMongo,
		repositories.BackendRedis, repositories.BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be one of badger, mongo, redis, memory, got %q", c.StoreBackend)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("CONNECTION_BUFFER_SIZE must be positive, got %d", c.ConnectionBufferSize)
	}
	if c.MaxMessageSize <= 0 {
		return fmt.Errorf("MAX_MESSAGE_SIZE must be positive, got %d", c.MaxMessageSize)
	}
	// These feed tickers and deadlines, which reject non-positive values at runtime.
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"PONG_WAIT", c.PongWait},
		{"PING_INTERVAL", c.PingInterval},
		{"WRITE_WAIT", c.WriteWait},
		{"STATUS_INTERVAL", c.StatusInterval},
	} {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if c.PingInterval >= c.PongWait {
		return fmt.Errorf("PING_INTERVAL (%s) must be shorter than PONG_WAIT (%s)", c.PingInterval, c.PongWait)
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) StoreOptions() repositories.Options {
	return repositories.Options{
		Backend:        c.StoreBackend,
		BadgerFilepath: c.BadgerFilepath,
		MongoURI:       c.MongoURI,
		MongoDatabase:  c.MongoDatabase,
		RedisAddr:      c.RedisAddr,
		ConnectTimeout: c.ConnectTimeout,
	}
}

func (c Config) WebsocketOptions() ws.Options {
	return ws.Options{
		BufferSize:     c.ConnectionBufferSize,
		MaxMessageSize: int64(c.MaxMessageSize),
		PongWait:       c.PongWait,
		PingInterval:   c.PingInterval,
		WriteWait:      c.WriteWait,
		AllowedOrigins: splitList(c.AllowedOrigins),
	}
}

func splitList(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	}))
}
