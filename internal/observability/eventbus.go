package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// EventBus publishes domain events as structured log entries.
type EventBus struct {
	logger *zap.Logger
}

// NewEventBus creates a new event bus. A nil logger falls back to the global logger.
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		logger: logger,
	}
}

// Publish publishes an event with the given type and data.
func (e *EventBus) Publish(ctx context.Context, eventType string, data map[string]interface{}) {
	logger := e.logger
	if logger == nil {
		logger = getBaseLogger()
	}
	logger = logger.With(contextFields(ctx)...)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(data)+1)
	fields = append(fields, String("event", eventType))
	for _, k := range keys {
		fields = append(fields, Any(k, data[k]))
	}

	logger.Info("event published", fields...)
}
