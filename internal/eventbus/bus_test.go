package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/lint"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/types"
)

func TestBusDispatchesInOrder(t *testing.T) {
	bus := New(8)
	var (
		mu   sync.Mutex
		seen []string
	)
	bus.Subscribe("collect", HandlerFunc(func(_ context.Context, evt event.DomainEvent) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, evt.EventType)
		return nil
	}))
	bus.Subscribe("failing", HandlerFunc(func(context.Context, event.DomainEvent) error {
		return errors.New("boom")
	}))
	bus.Subscribe("log", NewLogConsumer())
	bus.Start(context.Background())

	ctx := context.Background()
	bus.Publish(ctx, event.NewFormCreated(event.FormPayload{FormID: "f", Name: "A"}))
	bus.Publish(ctx, event.NewFormSaved(event.FormPayload{FormID: "f", Version: 2}))
	bus.Stop()

	assert.Equal(t, []string{event.FormCreated, event.FormSaved}, seen)

	// Publishing after Stop is dropped, not a panic.
	bus.Publish(ctx, event.NewFormDeleted(event.FormPayload{FormID: "f"}))
	bus.Stop()
}

func TestBusDrainsOnCancel(t *testing.T) {
	bus := New(4)
	var count int
	bus.Subscribe("count", HandlerFunc(func(context.Context, event.DomainEvent) error {
		count++
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	for range 3 {
		bus.Publish(ctx, event.NewFormSaved(event.FormPayload{FormID: "f"}))
	}
	cancel()
	bus.Start(ctx)
	<-bus.done

	assert.Equal(t, 3, count)
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := New(1)
	ctx := context.Background()
	bus.Publish(ctx, event.NewFormSaved(event.FormPayload{FormID: "f"}))
	bus.Publish(ctx, event.NewFormSaved(event.FormPayload{FormID: "f"}))
	assert.Len(t, bus.events, 1)
}

func TestLintConsumer(t *testing.T) {
	ctx := context.Background()
	forms := store.NewMemoryStore()
	doc, err := forms.Create(ctx, store.FormDocument{Schema: types.Schema{Fields: []types.Field{
		{ID: "a", Type: types.FieldText, Label: "A", Section: "missing"},
	}}})
	require.NoError(t, err)

	var got lint.Result
	c := NewLintConsumer(forms)
	c.OnReport(func(formID string, res lint.Result) {
		assert.Equal(t, doc.ID, formID)
		got = res
	})

	require.NoError(t, c.HandleEvent(ctx, event.NewFormCreated(event.FormPayload{FormID: doc.ID})))
	assert.Empty(t, got.Issues, "only saves are linted")

	require.NoError(t, c.HandleEvent(ctx, event.NewFormSaved(event.FormPayload{FormID: doc.ID, Version: 1})))
	assert.True(t, got.Valid)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, lint.CodeDanglingSection, got.Issues[0].Code)

	err = c.HandleEvent(ctx, event.NewFormSaved(event.FormPayload{FormID: "nope"}))
	assert.ErrorIs(t, err, store.ErrNotFound)
}
