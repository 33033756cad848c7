package eventbus

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/event"
)

// LogConsumer logs all domain events for observability.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	log.Info("event",
		"type", evt.EventType,
		"category", evt.Category,
		"form", evt.FormID,
		"field", evt.FieldID,
		"summary", evt.Summary)
	return nil
}
