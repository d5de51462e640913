package presence

import (
	"context"

	"pq-messenger/domain/event"
	"pq-messenger/observability"
)

// ChannelSink buffers events for one connection. Presence events carry the
// full online set, so when the buffer is full the oldest pending event is
// discarded in favour of the newest one.
type ChannelSink struct {
	Events chan event.DomainEvent
}

func NewChannelSink(bufferSize int) *ChannelSink {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &ChannelSink{Events: make(chan event.DomainEvent, bufferSize)}
}

// Consume never blocks.
func (s *ChannelSink) Consume(ctx context.Context, e event.DomainEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for {
		select {
		case s.Events <- e:
			return nil
		default:
		}
		select {
		case <-s.Events:
			observability.PresenceEventsDropped.Inc()
		default:
		}
	}
}
