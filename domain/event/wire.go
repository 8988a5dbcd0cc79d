package event

import (
	"chat-relay/domain"
	"time"

	"github.com/samber/lo"
)

// TimestampLayout matches the ISO-8601 form browsers produce with Date#toJSON.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// WireMessage is the JSON shape of a stored message, shared by the realtime
// channel and the read endpoint.
type WireMessage struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func ToWireMessage(m domain.ChatMessage) WireMessage {
	return WireMessage{
		Username:  m.Username,
		Message:   m.Body,
		Timestamp: FormatTimestamp(m.Timestamp),
	}
}

// ToWireMessages never returns nil so an empty history encodes as [].
func ToWireMessages(messages []domain.ChatMessage) []WireMessage {
	if len(messages) == 0 {
		return []WireMessage{}
	}
	return lo.Map(messages, func(m domain.ChatMessage, _ int) WireMessage {
		return ToWireMessage(m)
	})
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
