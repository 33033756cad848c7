// Package session manages live editor session lifecycle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/types"
)

// Mode is what the connected client is looking at.
type Mode string

const (
	ModeDesign  Mode = "design"
	ModePreview Mode = "preview"
)

// Session holds per-connection editing state: the working copy of one
// form, the version it was loaded at and the answers typed into the
// preview. Fields other than the timestamps are owned by the connection
// goroutine.
type Session struct {
	ID          string          `json:"id"`
	FormID      string          `json:"form_id"`
	Mode        Mode            `json:"mode"`
	Editor      *editor.Session `json:"-"`
	BaseVersion int             `json:"base_version"`
	Answers     map[string]any  `json:"answers"`
	Dirty       bool            `json:"dirty"`
	CreatedAt   time.Time       `json:"created_at"`

	mu           sync.Mutex
	lastActiveAt time.Time
}

// NewSession creates a design-mode session over schema.
func NewSession(formID string, schema types.Schema, baseVersion int, opts ...editor.Option) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		FormID:       formID,
		Mode:         ModeDesign,
		Editor:       editor.NewSession(editor.New(schema, opts...)),
		BaseVersion:  baseVersion,
		Answers:      make(map[string]any),
		CreatedAt:    now,
		lastActiveAt: now,
	}
}

// Touch updates the last activity timestamp.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

// LastActiveAt returns when the session was last touched.
func (s *Session) LastActiveAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActiveAt
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return maxAge > 0 && time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	return timeout > 0 && time.Since(s.LastActiveAt()) > timeout
}

// Rebase adopts a freshly saved version as the new baseline.
func (s *Session) Rebase(version int) {
	s.BaseVersion = version
	s.Dirty = false
}

// Manager handles session creation, lookup, and cleanup.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	maxAge      time.Duration
	idleTimeout time.Duration
}

// NewManager creates a session manager with the given timeouts. A zero
// timeout disables that check.
func NewManager(maxAge, idleTimeout time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[string]*Session),
		maxAge:      maxAge,
		idleTimeout: idleTimeout,
	}
}

// Create opens a session on a form and registers it.
func (m *Manager) Create(formID string, schema types.Schema, baseVersion int, opts ...editor.Option) *Session {
	s := NewSession(formID, schema, baseVersion, opts...)
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get retrieves a session by ID. Returns nil if not found or expired.
func (m *Manager) Get(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	if m.stale(s) {
		m.Remove(id)
		return nil
	}
	return s
}

// ForForm returns the live sessions editing formID.
func (m *Manager) ForForm(formID string) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Session
	for _, s := range m.sessions {
		if s.FormID == formID && !m.stale(s) {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of registered sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Remove deletes a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Cleanup removes all expired and idle sessions and returns how many went.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if m.stale(s) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// RunJanitor calls Cleanup every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Cleanup(); n > 0 {
				log.Debug("session: cleaned up", "removed", n)
			}
		}
	}
}

func (m *Manager) stale(s *Session) bool {
	return s.IsExpired(m.maxAge) || s.IsIdle(m.idleTimeout)
}
