package ssedata

import (
	"context"

	"github.com/skillsprint/skillsprint-backend/internal/sse"
)

type key struct{}

var sseDataKey key

// SSEData collects events raised during a request so they are broadcast only
// after the handler finishes, not mid-mutation.
type SSEData struct {
	Messages []sse.SSEMessage
}

func WithSSEData(ctx context.Context) context.Context {
	return context.WithValue(ctx, sseDataKey, &SSEData{Messages: make([]sse.SSEMessage, 0)})
}

func GetSSEData(ctx context.Context) *SSEData {
	if d, ok := ctx.Value(sseDataKey).(*SSEData); ok {
		return d
	}
	return nil
}

func (d *SSEData) AppendMessage(msg sse.SSEMessage) {
	d.Messages = append(d.Messages, msg)
}

// Append queues the message on the request's SSEData when present; callers
// without one (background work, tests) get a direct broadcast instead.
func Append(ctx context.Context, broadcaster sse.Broadcaster, msg sse.SSEMessage) {
	if d := GetSSEData(ctx); d != nil {
		d.AppendMessage(msg)
		return
	}
	if broadcaster != nil {
		broadcaster.Broadcast(msg)
	}
}
