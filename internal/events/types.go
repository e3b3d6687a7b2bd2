package events

import (
	"context"
)

type Event interface {
	Name() string
}

type EventHandler interface {
	Notify(ctx context.Context, event Event)
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event Event)

func (f EventHandlerFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}
