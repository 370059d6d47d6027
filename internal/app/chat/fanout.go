package chat

import (
	"context"
	"sync"
	"time"

	"dmchat/internal/app/message"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/metrics"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Fanout pushes events to the live handles found in the registry.
type Fanout struct {
	registry    *Registry
	sendTimeout time.Duration
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewFanout constructs a Fanout bounding every push by sendTimeout.
func NewFanout(registry *Registry, sendTimeout time.Duration, m *metrics.Metrics) *Fanout {
	return &Fanout{
		registry:    registry,
		sendTimeout: sendTimeout,
		metrics:     m,
		logger:      logx.Component("Fanout"),
	}
}

// Deliver pushes a newMessage event for msg to the sender and the receiver when they are online.
// The pushes run concurrently and Deliver returns once each has finished or timed out.
// Failures are logged and counted, never returned.
func (f *Fanout) Deliver(ctx context.Context, msg message.Message) {
	ev := NewEvent(TypeNewMessage, msg)

	var wg sync.WaitGroup
	for _, id := range lo.Uniq([]string{msg.SenderID, msg.ReceiverID}) {
		h, ok := f.registry.Lookup(id)
		if !ok {
			f.metrics.FanoutPushes.WithLabelValues(metrics.PushOffline).Inc()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			f.push(ctx, id, h, ev)
		}()
	}
	wg.Wait()
}

// Broadcast pushes ev to every live handle except the one of except.
func (f *Fanout) Broadcast(ctx context.Context, ev Event, except string) {
	var wg sync.WaitGroup
	for id, h := range f.registry.snapshotHandles(except) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.push(ctx, id, h, ev)
		}()
	}
	wg.Wait()
}

func (f *Fanout) push(ctx context.Context, id string, h Handle, ev Event) {
	ctx, cancel := context.WithTimeout(ctx, f.sendTimeout)
	defer cancel()

	if err := h.Push(ctx, ev); err != nil {
		f.metrics.FanoutPushes.WithLabelValues(metrics.PushFailed).Inc()
		f.logger.Warn().
			Err(err).
			Str("user_id", id).
			Str("event_type", string(ev.Type)).
			Msg("Push to live connection failed")
		return
	}

	f.metrics.FanoutPushes.WithLabelValues(metrics.PushDelivered).Inc()
}
