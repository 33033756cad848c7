package handler

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/event"
)

// recordEvent records a domain event if a recorder is configured. Errors
// are logged but do not fail the request.
func recordEvent(ctx context.Context, rec event.Recorder, evt event.DomainEvent) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, evt); err != nil {
		log.Error("event recording failed", "type", evt.EventType, "form", evt.FormID, "error", err)
	}
}
