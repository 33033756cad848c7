package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. Documents are copied on
// the way in and out so callers never share a schema with the store.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]FormDocument
	now  func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]FormDocument), now: time.Now}
}

func (s *MemoryStore) Create(_ context.Context, doc FormDocument) (FormDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc = prepareNew(doc, s.now().UTC())
	if _, ok := s.docs[doc.ID]; ok {
		return FormDocument{}, ErrExists
	}
	s.docs[doc.ID] = doc
	return clone(doc), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (FormDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return FormDocument{}, ErrNotFound
	}
	return clone(doc), nil
}

func (s *MemoryStore) List(_ context.Context, opts ListOptions) ([]FormDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]FormDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		if opts.Owner != "" && doc.Owner != opts.Owner {
			continue
		}
		out = append(out, clone(doc))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit := opts.limit(); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, doc FormDocument) (FormDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.docs[doc.ID]
	if !ok {
		return FormDocument{}, ErrNotFound
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
	s.docs[doc.ID] = doc
	return clone(doc), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func clone(doc FormDocument) FormDocument {
	doc.Schema = doc.Schema.Clone()
	return doc
}
