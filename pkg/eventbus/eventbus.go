// Package eventbus is the in-process dispatcher for domain events, backed by
// a watermill gochannel pub/sub. Every subscriber gets every event.
package eventbus

import (
	"context"
	"fmt"

	"survey-payout-be/internal/pkg/logger"
	"survey-payout-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "domain_events"

// Publisher is what services depend on. Publishing is best-effort: failures
// are logged and never surface to the caller.
type Publisher interface {
	Publish(ctx context.Context, evs ...events.Event)
}

// Handler processes one decoded event. A returned error is logged; the event
// is not redelivered.
type Handler func(ctx context.Context, e events.Event) error

type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func New(log logger.ILogger) *Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)
	return &Bus{pubSub: pubSub, logger: log}
}

func (b *Bus) Publish(ctx context.Context, evs ...events.Event) {
	for _, e := range evs {
		payload, err := events.Encode(e)
		if err != nil {
			b.logger.Error(logger.ModuleEventBus, "Failed to encode event", map[string]interface{}{
				"type":  e.EventType(),
				"error": err.Error(),
			})
			continue
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("event_type", e.EventType())
		msg.SetContext(ctx)

		if err := b.pubSub.Publish(Topic, msg); err != nil {
			b.logger.Error(logger.ModuleEventBus, "Failed to publish event", map[string]interface{}{
				"type":  e.EventType(),
				"error": err.Error(),
			})
		}
	}
}

// Subscribe starts a goroutine feeding every event to handler until ctx is
// done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, name string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}

	go func() {
		for msg := range messages {
			b.dispatch(ctx, name, msg, handler)
		}
	}()

	b.logger.Info(logger.ModuleEventBus, "Subscriber registered", map[string]interface{}{"subscriber": name})
	return nil
}

func (b *Bus) dispatch(ctx context.Context, name string, msg *message.Message, handler Handler) {
	defer msg.Ack()

	e, err := events.Decode(msg.Payload)
	if err != nil {
		b.logger.Error(logger.ModuleEventBus, "Dropping undecodable event", map[string]interface{}{
			"subscriber": name,
			"messageId":  msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	if err := handler(ctx, e); err != nil {
		b.logger.Error(logger.ModuleEventBus, "Subscriber failed", map[string]interface{}{
			"subscriber": name,
			"type":       e.EventType(),
			"error":      err.Error(),
		})
	}
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
