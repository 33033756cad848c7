package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const entriesTable = "activity_entries"

var entryColumns = []string{
	"event_id", "event_type", "occurred_at", "form_id", "field_id",
	"actor", "summary", "category", "payload",
}

// SQLStore implements Store on a SQL database through ent's query builder.
type SQLStore struct {
	drv *entsql.Driver
}

// NewSQLStore creates a new SQLStore.
func NewSQLStore(drv *entsql.Driver) *SQLStore {
	return &SQLStore{drv: drv}
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

// CreateTable creates the activity_entries table and its indexes.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	_, err := s.drv.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_entries (
			event_id    TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			occurred_at INTEGER NOT NULL,
			form_id     TEXT NOT NULL,
			field_id    TEXT NOT NULL DEFAULT '',
			actor       TEXT NOT NULL DEFAULT '',
			summary     TEXT NOT NULL,
			category    TEXT NOT NULL,
			payload     TEXT,
			PRIMARY KEY (form_id, event_id)
		);

		CREATE INDEX IF NOT EXISTS idx_activity_form_time
			ON activity_entries (form_id, occurred_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating activity table: %w", err)
	}
	return nil
}

// WriteEntries inserts entries, ignoring ones already stored.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ins := s.builder().Insert(entriesTable).Columns(entryColumns...)
	for _, e := range entries {
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		ins = ins.Values(
			e.EventID, e.EventType, e.OccurredAt.UnixNano(), e.FormID, e.FieldID,
			e.Actor, e.Summary, e.Category, payload,
		)
	}
	query, args := ins.OnConflict(entsql.DoNothing()).Query()
	if _, err := s.drv.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("writing activity entries: %w", err)
	}
	return nil
}

// QueryByForm returns a form's history with filtering and pagination.
func (s *SQLStore) QueryByForm(ctx context.Context, formID string, opts QueryOptions) ([]Entry, string, int, error) {
	where := func() *entsql.Predicate {
		preds := []*entsql.Predicate{entsql.EQ("form_id", formID)}
		if opts.Since != nil {
			preds = append(preds, entsql.GTE("occurred_at", opts.Since.UnixNano()))
		}
		if opts.Until != nil {
			preds = append(preds, entsql.LTE("occurred_at", opts.Until.UnixNano()))
		}
		if len(opts.EventTypes) > 0 {
			preds = append(preds, entsql.In("event_type", toAny(opts.EventTypes)...))
		}
		if len(opts.Categories) > 0 {
			preds = append(preds, entsql.In("category", toAny(opts.Categories)...))
		}
		if opts.FieldID != "" {
			preds = append(preds, entsql.EQ("field_id", opts.FieldID))
		}
		if t, ok := cursorTime(opts.Cursor); ok {
			preds = append(preds, entsql.LT("occurred_at", t.UnixNano()))
		}
		return entsql.And(preds...)
	}

	limit := opts.limit()
	b := s.builder()
	query, args := b.Select(entryColumns...).
		From(b.Table(entriesTable)).
		Where(where()).
		OrderBy(entsql.Desc("occurred_at"), "event_id").
		Limit(limit + 1). // fetch one extra for the cursor
		Query()

	entries, err := s.scan(ctx, query, args)
	if err != nil {
		return nil, "", 0, fmt.Errorf("querying activity entries: %w", err)
	}

	var nextCursor string
	if len(entries) > limit {
		entries = entries[:limit]
		nextCursor = cursorOf(entries[len(entries)-1])
	}

	totalCount, err := s.count(ctx, where())
	if err != nil {
		return nil, "", 0, err
	}
	return entries, nextCursor, totalCount, nil
}

// Search matches summaries case-insensitively.
func (s *SQLStore) Search(ctx context.Context, query string, opts SearchOptions) ([]Entry, int, error) {
	where := func() *entsql.Predicate {
		preds := []*entsql.Predicate{entsql.ContainsFold("summary", query)}
		if opts.FormID != "" {
			preds = append(preds, entsql.EQ("form_id", opts.FormID))
		}
		if opts.Since != nil {
			preds = append(preds, entsql.GTE("occurred_at", opts.Since.UnixNano()))
		}
		if len(opts.Categories) > 0 {
			preds = append(preds, entsql.In("category", toAny(opts.Categories)...))
		}
		return entsql.And(preds...)
	}

	b := s.builder()
	q, args := b.Select(entryColumns...).
		From(b.Table(entriesTable)).
		Where(where()).
		OrderBy(entsql.Desc("occurred_at"), "event_id").
		Limit(opts.limit()).
		Query()

	entries, err := s.scan(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("searching activity entries: %w", err)
	}
	totalCount, err := s.count(ctx, where())
	if err != nil {
		return nil, 0, err
	}
	return entries, totalCount, nil
}

func (s *SQLStore) count(ctx context.Context, where *entsql.Predicate) (int, error) {
	b := s.builder()
	query, args := b.Select(entsql.Count("*")).
		From(b.Table(entriesTable)).
		Where(where).
		Query()
	var n int
	if err := s.drv.DB().QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting activity entries: %w", err)
	}
	return n, nil
}

func (s *SQLStore) scan(ctx context.Context, query string, args []any) ([]Entry, error) {
	rows, err := s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e       Entry
			at      int64
			payload sql.NullString
		)
		if err := rows.Scan(&e.EventID, &e.EventType, &at, &e.FormID, &e.FieldID,
			&e.Actor, &e.Summary, &e.Category, &payload); err != nil {
			return nil, fmt.Errorf("scanning activity entry: %w", err)
		}
		e.OccurredAt = time.Unix(0, at).UTC()
		if payload.Valid {
			e.Payload = []byte(payload.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
