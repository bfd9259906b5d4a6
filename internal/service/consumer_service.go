package service

import (
	"context"
	"fmt"

	"survey-payout-be/pkg/eventbus"
	"survey-payout-be/pkg/events"
)

// Broker forwards domain events to an external stream.
type Broker interface {
	Forward(ctx context.Context, e events.Event) error
	Name() string
	Close() error
}

// Subscriber is one named consumer of the in-process event bus.
type Subscriber struct {
	Name   string
	Handle eventbus.Handler
}

// BrokerSubscriber forwards every event to b.
func BrokerSubscriber(b Broker) Subscriber {
	return Subscriber{
		Name: "forward-" + b.Name(),
		Handle: func(ctx context.Context, e events.Event) error {
			return b.Forward(ctx, e)
		},
	}
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	bus         *eventbus.Bus
	subscribers []Subscriber
}

func NewConsumerService(bus *eventbus.Bus, subscribers ...Subscriber) IConsumerService {
	return &consumerService{bus: bus, subscribers: subscribers}
}

// Consume attaches every subscriber to the bus. Each runs on its own
// goroutine until ctx is cancelled.
func (cs *consumerService) Consume(ctx context.Context) error {
	for _, sub := range cs.subscribers {
		if err := cs.bus.Subscribe(ctx, sub.Name, sub.Handle); err != nil {
			return fmt.Errorf("attach %s: %w", sub.Name, err)
		}
	}
	return nil
}
