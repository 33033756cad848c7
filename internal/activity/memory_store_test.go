package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/commonapply/internal/store"
)

var base = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func testEntry(formID, fieldID, eventType, category, summary string, minutesAgo int) Entry {
	return Entry{
		EventID:    "test-" + summary,
		EventType:  eventType,
		OccurredAt: base.Add(-time.Duration(minutesAgo) * time.Minute),
		FormID:     formID,
		FieldID:    fieldID,
		Summary:    summary,
		Category:   category,
	}
}

func newSQLStore(t *testing.T) Store {
	t.Helper()
	ctx := context.Background()
	drv, err := store.OpenSQLite(ctx, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { drv.Close() })
	s := NewSQLStore(drv)
	if err := s.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	return s
}

func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sql", func(t *testing.T) { fn(t, newSQLStore(t)) })
}

func seed(t *testing.T, s Store) {
	t.Helper()
	entries := []Entry{
		testEntry("form-a", "name", "field_added", "field", "Added Name", 30),
		testEntry("form-a", "name", "field_updated", "field", "Updated Name", 20),
		testEntry("form-a", "", "section_added", "section", "Added Academics", 10),
		testEntry("form-b", "email", "field_added", "field", "Added Email", 5),
	}
	if err := s.WriteEntries(context.Background(), entries); err != nil {
		t.Fatalf("WriteEntries: %v", err)
	}
}

func TestStore_WriteAndQuery(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		seed(t, s)

		results, cursor, total, err := s.QueryByForm(context.Background(), "form-a", QueryOptions{})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if len(results) != 3 {
			t.Fatalf("results = %d, want 3", len(results))
		}
		if cursor != "" {
			t.Errorf("cursor = %q, want empty", cursor)
		}
		if results[0].Summary != "Added Academics" {
			t.Errorf("first = %q, want newest entry first", results[0].Summary)
		}
	})
}

func TestStore_WriteIsIdempotent(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		seed(t, s)
		seed(t, s)

		_, _, total, err := s.QueryByForm(context.Background(), "form-a", QueryOptions{})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3 after duplicate write", total)
		}
	})
}

func TestStore_QueryByForm_Filters(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		seed(t, s)
		ctx := context.Background()

		results, _, total, err := s.QueryByForm(ctx, "form-a", QueryOptions{Categories: []string{"field"}})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if total != 2 || len(results) != 2 {
			t.Errorf("category filter: total=%d len=%d, want 2", total, len(results))
		}

		results, _, _, err = s.QueryByForm(ctx, "form-a", QueryOptions{EventTypes: []string{"field_updated"}})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if len(results) != 1 || results[0].EventType != "field_updated" {
			t.Errorf("event type filter returned %+v", results)
		}

		results, _, _, err = s.QueryByForm(ctx, "form-a", QueryOptions{FieldID: "name"})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if len(results) != 2 {
			t.Errorf("field filter: len=%d, want 2", len(results))
		}

		since := base.Add(-25 * time.Minute)
		until := base.Add(-15 * time.Minute)
		results, _, _, err = s.QueryByForm(ctx, "form-a", QueryOptions{Since: &since, Until: &until})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if len(results) != 1 || results[0].Summary != "Updated Name" {
			t.Errorf("time window returned %+v", results)
		}
	})
}

func TestStore_QueryByForm_Pagination(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		seed(t, s)
		ctx := context.Background()

		page1, cursor, total, err := s.QueryByForm(ctx, "form-a", QueryOptions{Limit: 2})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if len(page1) != 2 || cursor == "" {
			t.Fatalf("page1 len=%d cursor=%q", len(page1), cursor)
		}

		page2, cursor2, _, err := s.QueryByForm(ctx, "form-a", QueryOptions{Limit: 2, Cursor: cursor})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if len(page2) != 1 || page2[0].Summary != "Added Name" {
			t.Errorf("page2 = %+v", page2)
		}
		if cursor2 != "" {
			t.Errorf("cursor2 = %q, want empty", cursor2)
		}
	})
}

func TestStore_Search(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		seed(t, s)
		ctx := context.Background()

		results, total, err := s.Search(ctx, "added", SearchOptions{})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if total != 3 || len(results) != 3 {
			t.Errorf("total=%d len=%d, want 3", total, len(results))
		}

		results, _, err = s.Search(ctx, "added", SearchOptions{FormID: "form-b"})
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 1 || results[0].FieldID != "email" {
			t.Errorf("form filter returned %+v", results)
		}
	})
}

func TestStore_PayloadRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		e := testEntry("form-c", "x", "field_added", "field", "Added X", 0)
		e.Payload = []byte(`{"field_id":"x"}`)
		if err := s.WriteEntries(context.Background(), []Entry{e}); err != nil {
			t.Fatalf("WriteEntries: %v", err)
		}
		results, _, _, err := s.QueryByForm(context.Background(), "form-c", QueryOptions{})
		if err != nil {
			t.Fatalf("QueryByForm: %v", err)
		}
		if len(results) != 1 || string(results[0].Payload) != `{"field_id":"x"}` {
			t.Errorf("payload = %+v", results)
		}
	})
}
