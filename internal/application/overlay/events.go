package overlay

import (
	"context"

	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

type domainEvent struct {
	eventType string
	payload   interface{}
}

func (e domainEvent) EventType() string {
	return e.eventType
}

func (e domainEvent) Payload() interface{} {
	return e.payload
}

// TransitionPayload extracts the from/to states of an EventStateChanged event.
func TransitionPayload(event ports.DomainEvent) (from, to domain.State, ok bool) {
	if event == nil || event.EventType() != ports.EventStateChanged {
		return 0, 0, false
	}
	payload, isMap := event.Payload().(map[string]interface{})
	if !isMap {
		return 0, 0, false
	}
	from, okFrom := payload["from_state"].(domain.State)
	to, okTo := payload["to_state"].(domain.State)
	return from, to, okFrom && okTo
}

func publishEvent(ctx context.Context, publisher ports.EventPublisher, logger ports.Logger, eventType string, payload map[string]interface{}) {
	if publisher == nil {
		return
	}
	event := domainEvent{
		eventType: eventType,
		payload:   payload,
	}
	if err := publisher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn(ctx, "failed to publish domain event", "event_type", eventType, "error", err)
	}
}

func (c *Controller) publish(eventType string, payload map[string]interface{}) {
	payload["overlay_id"] = c.opts.ID
	publishEvent(c.ctx, c.opts.Events, c.logger, eventType, payload)
}

func (c *Controller) recordTransition(from, to domain.State) {
	c.logger.Debug(c.ctx, "overlay transition", "from", from.String(), "to", to.String())
	c.publish(ports.EventStateChanged, map[string]interface{}{
		"from":       from.String(),
		"to":         to.String(),
		"from_state": from,
		"to_state":   to,
	})
	if c.opts.Metrics != nil {
		c.opts.Metrics.IncCounter(c.ctx, ports.MetricTransitions, map[string]string{
			"from": from.String(),
			"to":   to.String(),
		})
	}
}

func (c *Controller) recordRetry(attempt int, reason string) {
	c.logger.Debug(c.ctx, "measurement retry scheduled", "attempt", attempt, "reason", reason)
	c.publish(ports.EventMeasureRetry, map[string]interface{}{
		"attempt": attempt,
		"reason":  reason,
	})
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...interface{}) {}
func (nopLogger) Info(context.Context, string, ...interface{})  {}
func (nopLogger) Warn(context.Context, string, ...interface{})  {}
func (nopLogger) Error(context.Context, string, ...interface{}) {}
func (n nopLogger) With(...interface{}) ports.Logger            { return n }
