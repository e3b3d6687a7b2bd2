package events

import (
	"context"
)

type EventPublisher struct {
	handlers map[string][]EventHandler
}

func NewEventPublisher() EventPublisher {
	return EventPublisher{
		handlers: map[string][]EventHandler{},
	}
}

// Subscribe is not safe to call concurrently with Notify, subscribe everything
// before the services start.
func (e *EventPublisher) Subscribe(handler EventHandler, events ...Event) {
	for _, event := range events {
		handlers := e.handlers[event.Name()]
		handlers = append(handlers, handler)
		e.handlers[event.Name()] = handlers
	}
}

func (e *EventPublisher) Notify(ctx context.Context, event Event) {
	for _, handler := range e.handlers[event.Name()] {
		handler.Notify(ctx, event)
	}
}

func (e *EventPublisher) HasSubscribers(event Event) bool {
	return len(e.handlers[event.Name()]) > 0
}
