package ports

import "context"

const (
	// EventStateChanged is emitted on every lifecycle transition.
	EventStateChanged = "overlay.state_changed"
	// EventPositioned is emitted when a placement is computed or recomputed.
	EventPositioned = "overlay.positioned"
	// EventMeasureRetry is emitted when a measurement round comes back unusable.
	EventMeasureRetry = "overlay.measure_retry"
	// EventMeasureTimeout is emitted when the retry guard gives up.
	EventMeasureTimeout = "overlay.measure_timeout"
)

// DomainEvent represents a significant occurrence within the domain or
// application layer. Events carry structured payloads that downstream
// subscribers can use for logging, UI updates, or tracing.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run. Implementations must be
// thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Failures should be
// surfaced via returned errors so publishers can log diagnostics and continue
// delivering to remaining subscribers.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events and release resources.
type Subscription interface {
	Unsubscribe()
}
