package bus

import "time"

// EventBus is a thread-safe, in-process pub/sub bus. Handlers subscribe by
// Event.Type() and are called synchronously in the publisher's goroutine, in
// subscription order. Handler errors are joined and returned from Publish.
type EventBus interface {
	Publish(event Event) error
	// PublishAsync delivers in a new goroutine. The channel receives the joined
	// handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	PublishBatch(events ...Event) error

	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe is safe to call with nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics is only updated while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message. Implementations should treat it as read-only.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

type EventHandler func(event Event) error

type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel is idempotent.
	Cancel() error
}

// EventBusObserver is told about every delivery. It should return quickly.
type EventBusObserver interface {
	OnPublish(eventType string, event Event)
	OnDelivered(eventType string, handlers int, err error, duration time.Duration)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
}
