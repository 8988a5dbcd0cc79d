// Package ws carries the realtime channel over gorilla/websocket.
package ws

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Options struct {
	BufferSize     int
	MaxMessageSize int64
	PongWait       time.Duration
	PingInterval   time.Duration
	WriteWait      time.Duration
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		BufferSize:     256,
		MaxMessageSize: 64 * 1024,
		PongWait:       60 * time.Second,
		PingInterval:   54 * time.Second,
		WriteWait:      10 * time.Second,
		AllowedOrigins: []string{"*"},
	}
}

// OriginPolicy answers the upgrader's CheckOrigin.
// Requests without an Origin header come from non-browser clients and pass.
type OriginPolicy struct {
	allowAll bool
	allowed  map[string]struct{}
}

func NewOriginPolicy(origins []string, log *slog.Logger) OriginPolicy {
	p := OriginPolicy{allowed: make(map[string]struct{})}
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case trimmed == "":
		case trimmed == "*":
			p.allowAll = true
		default:
			normalized, ok := normalizeOrigin(trimmed)
			if !ok {
				log.Warn("Ignoring invalid origin in configuration", "origin", origin)
				continue
			}
			p.allowed[normalized] = struct{}{}
		}
	}
	return p
}

func (p OriginPolicy) Allows(origin string) bool {
	if origin == "" || p.allowAll {
		return true
	}
	normalized, ok := normalizeOrigin(origin)
	if !ok {
		return false
	}
	_, exists := p.allowed[normalized]
	return exists
}

func (p OriginPolicy) checkOrigin(r *http.Request) bool {
	return p.Allows(r.Header.Get("Origin"))
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}
