// Package store persists form documents: a schema plus the bookkeeping the
// HTTP layer needs (name, owner, version, timestamps).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/commonapply/internal/types"
)

var (
	// ErrNotFound is returned when no form has the requested id.
	ErrNotFound = errors.New("form not found")
	// ErrConflict is returned by Save when the stored version moved on.
	ErrConflict = errors.New("form version conflict")
	// ErrExists is returned by Create when the id is taken.
	ErrExists = errors.New("form already exists")
)

// FormDocument is one stored form.
type FormDocument struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Owner     string       `json:"owner,omitempty"`
	Schema    types.Schema `json:"schema"`
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ListOptions filters List.
type ListOptions struct {
	Owner string // empty lists every owner
	Limit int    // default 100, max 500
}

// Store is the interface for reading and writing form documents.
type Store interface {
	// Create stores a new document at version 1, assigning an id if empty.
	Create(ctx context.Context, doc FormDocument) (FormDocument, error)

	// Get returns the document with the given id.
	Get(ctx context.Context, id string) (FormDocument, error)

	// List returns documents, most recently updated first.
	List(ctx context.Context, opts ListOptions) ([]FormDocument, error)

	// Save replaces the document if doc.Version matches the stored version
	// and returns it with the version bumped.
	Save(ctx context.Context, doc FormDocument) (FormDocument, error)

	// Delete removes the document.
	Delete(ctx context.Context, id string) error
}

func (o ListOptions) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 100
	}
	return o.Limit
}

// prepareNew fills the fields Create owns.
func prepareNew(doc FormDocument, now time.Time) FormDocument {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.Name == "" {
		doc.Name = "Untitled form"
	}
	doc.Schema = doc.Schema.Normalize()
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return doc
}
