// Package activity stores the per-form change history written by the event
// recorder.
package activity

import (
	"encoding/json"
	"time"
)

// Entry is one recorded change to a form.
type Entry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	FormID     string          `json:"form_id"`
	FieldID    string          `json:"field_id,omitempty"` // set for field events
	Actor      string          `json:"actor,omitempty"`
	Summary    string          `json:"summary"`
	Category   string          `json:"category"` // "field", "section", "form"
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// QueryOptions controls filtering and pagination for form history queries.
type QueryOptions struct {
	Since      *time.Time
	Until      *time.Time
	EventTypes []string // filter to specific event types
	Categories []string // filter to specific categories
	FieldID    string   // only entries about this field
	Limit      int      // max results (default: 100, max: 500)
	Cursor     string   // occurred_at of the last entry of the previous page
}

// SearchOptions controls filtering for summary search.
type SearchOptions struct {
	FormID     string // empty searches every form
	Since      *time.Time
	Categories []string
	Limit      int // max results (default: 20)
}

// DefaultQueryOptions returns QueryOptions covering the last six months.
func DefaultQueryOptions() QueryOptions {
	sixMonthsAgo := time.Now().AddDate(0, -6, 0)
	return QueryOptions{
		Since: &sixMonthsAgo,
		Limit: 100,
	}
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 100
	}
	return o.Limit
}

func (o SearchOptions) limit() int {
	if o.Limit <= 0 {
		return 20
	}
	return o.Limit
}

func cursorTime(cursor string) (time.Time, bool) {
	if cursor == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, cursor)
	return t, err == nil
}

func cursorOf(e Entry) string {
	return e.OccurredAt.UTC().Format(time.RFC3339Nano)
}
