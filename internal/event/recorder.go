// Package event provides form change events. Events are written to the
// activity store, then published to the in-process event bus for
// downstream consumers.
package event

import (
	"context"

	"github.com/matthewbaird/commonapply/internal/activity"
)

// Recorder writes domain events to the activity store.
type Recorder interface {
	Record(ctx context.Context, evt DomainEvent) error
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// ActivityRecorder implements Recorder by writing one activity entry per
// event. If a Publisher is set, the event is also published after the store
// write succeeds.
type ActivityRecorder struct {
	store activity.Store
	bus   Publisher
}

// NewActivityRecorder creates a new ActivityRecorder backed by the given store.
func NewActivityRecorder(store activity.Store) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// SetPublisher attaches an event bus. Events are published after store writes.
func (r *ActivityRecorder) SetPublisher(p Publisher) {
	r.bus = p
}

// Record writes evt to the activity store and publishes it.
func (r *ActivityRecorder) Record(ctx context.Context, evt DomainEvent) error {
	if err := r.store.WriteEntries(ctx, []activity.Entry{Entry(evt)}); err != nil {
		return err
	}
	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
	return nil
}

// Entry converts evt into its activity record.
func Entry(evt DomainEvent) activity.Entry {
	return activity.Entry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		FormID:     evt.FormID,
		FieldID:    evt.FieldID,
		Actor:      evt.Actor,
		Summary:    evt.Summary,
		Category:   evt.Category,
		Payload:    evt.Payload,
	}
}
