package activity

import "context"

// Store is the interface for reading and writing activity entries.
type Store interface {
	// WriteEntries writes one or more entries. Entries already stored under
	// the same event id and form are skipped.
	WriteEntries(ctx context.Context, entries []Entry) error

	// QueryByForm returns a form's history, newest first.
	QueryByForm(ctx context.Context, formID string, opts QueryOptions) (entries []Entry, nextCursor string, totalCount int, err error)

	// Search matches entry summaries case-insensitively.
	Search(ctx context.Context, query string, opts SearchOptions) (entries []Entry, totalCount int, err error)
}
