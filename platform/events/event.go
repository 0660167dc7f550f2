// Package events is the in-process publish/subscribe layer modules use to react
// to each other's outcomes without importing each other.
package events

import (
	"context"
	"time"
)

// Event is anything published on the bus. EventName is the routing key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp every event shares.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler reacts to one published event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to the handlers subscribed under their name.
type Bus interface {
	// Publish hands the event to every handler without waiting for them.
	Publish(ctx context.Context, event Event)
	// PublishSync runs every handler and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}

var _ Bus = (*InMemoryBus)(nil)
