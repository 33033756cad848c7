package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/matthewbaird/commonapply/internal/types"
)

const formsTable = "forms"

var formColumns = []string{"id", "name", "owner", "schema", "version", "created_at", "updated_at"}

// SQLStore implements Store on a SQL database through ent's query builder.
// The schema triple is kept as a JSON text column; timestamps are unix
// nanoseconds.
type SQLStore struct {
	drv *entsql.Driver
	now func() time.Time
}

// NewSQLStore creates a SQLStore on drv.
func NewSQLStore(drv *entsql.Driver) *SQLStore {
	return &SQLStore{drv: drv, now: time.Now}
}

func (s *SQLStore) builder() *entsql.DialectBuilder {
	return entsql.Dialect(s.drv.Dialect())
}

// CreateTable creates the forms table if it does not exist.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	_, err := s.drv.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forms (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			owner      TEXT NOT NULL DEFAULT '',
			schema     TEXT NOT NULL,
			version    INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_forms_owner_updated
			ON forms (owner, updated_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("creating forms table: %w", err)
	}
	return nil
}

func (s *SQLStore) Create(ctx context.Context, doc FormDocument) (FormDocument, error) {
	doc = prepareNew(doc, s.now().UTC())
	raw, err := json.Marshal(doc.Schema)
	if err != nil {
		return FormDocument{}, fmt.Errorf("encoding schema: %w", err)
	}

	if _, err := s.Get(ctx, doc.ID); err == nil {
		return FormDocument{}, ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return FormDocument{}, err
	}

	query, args := s.builder().Insert(formsTable).
		Columns(formColumns...).
		Values(doc.ID, doc.Name, doc.Owner, string(raw), doc.Version, doc.CreatedAt.UnixNano(), doc.UpdatedAt.UnixNano()).
		Query()
	if _, err := s.drv.ExecContext(ctx, query, args...); err != nil {
		return FormDocument{}, fmt.Errorf("inserting form: %w", err)
	}
	return doc, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (FormDocument, error) {
	b := s.builder()
	query, args := b.Select(formColumns...).
		From(b.Table(formsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	rows, err := s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return FormDocument{}, fmt.Errorf("querying form: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return FormDocument{}, fmt.Errorf("querying form: %w", err)
		}
		return FormDocument{}, ErrNotFound
	}
	return scanForm(rows)
}

func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]FormDocument, error) {
	b := s.builder()
	sel := b.Select(formColumns...).
		From(b.Table(formsTable)).
		OrderBy(entsql.Desc("updated_at"), "id").
		Limit(opts.limit())
	if opts.Owner != "" {
		sel = sel.Where(entsql.EQ("owner", opts.Owner))
	}
	query, args := sel.Query()

	rows, err := s.drv.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	defer rows.Close()

	out := []FormDocument{}
	for rows.Next() {
		doc, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing forms: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Save(ctx context.Context, doc FormDocument) (FormDocument, error) {
	cur, err := s.Get(ctx, doc.ID)
	if err != nil {
		return FormDocument{}, err
	}
	if cur.Version != doc.Version {
		return FormDocument{}, ErrConflict
	}

	doc.Schema = doc.Schema.Normalize()
	doc.CreatedAt = cur.CreatedAt
	doc.UpdatedAt = s.now().UTC()
	doc.Version = cur.Version + 1
	if doc.Name == "" {
		doc.Name = cur.Name
	}
	raw, err := json.Marshal(doc.Schema)
	if err != nil {
		return FormDocument{}, fmt.Errorf("encoding schema: %w", err)
	}

	query, args := s.builder().Update(formsTable).
		Set("name", doc.Name).
		Set("owner", doc.Owner).
		Set("schema", string(raw)).
		Set("version", doc.Version).
		Set("updated_at", doc.UpdatedAt.UnixNano()).
		Where(entsql.And(entsql.EQ("id", doc.ID), entsql.EQ("version", cur.Version))).
		Query()
	res, err := s.drv.ExecContext(ctx, query, args...)
	if err != nil {
		return FormDocument{}, fmt.Errorf("updating form: %w", err)
	}
	// A concurrent writer may have bumped the version between Get and Update.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return FormDocument{}, ErrConflict
	}
	return doc, nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	query, args := s.builder().Delete(formsTable).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := s.drv.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting form: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanForm(rows *sql.Rows) (FormDocument, error) {
	var (
		doc              FormDocument
		raw              string
		created, updated int64
	)
	if err := rows.Scan(&doc.ID, &doc.Name, &doc.Owner, &raw, &doc.Version, &created, &updated); err != nil {
		return FormDocument{}, fmt.Errorf("scanning form: %w", err)
	}
	var schema types.Schema
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return FormDocument{}, fmt.Errorf("decoding schema of form %s: %w", doc.ID, err)
	}
	doc.Schema = schema.Normalize()
	doc.CreatedAt = time.Unix(0, created).UTC()
	doc.UpdatedAt = time.Unix(0, updated).UTC()
	return doc, nil
}
