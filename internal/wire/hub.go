package wire

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matthewbaird/commonapply/internal/event"
)

// broadcastTimeout bounds a single write to a slow client.
const broadcastTimeout = 5 * time.Second

// sender delivers a message to one connected client.
type sender interface {
	send(ctx context.Context, msg ServerMessage) error
}

type connSender struct{ conn *websocket.Conn }

func (c connSender) send(ctx context.Context, msg ServerMessage) error {
	return wsjson.Write(ctx, c.conn, msg)
}

// Hub tracks the connections attached to each form and fans form events
// out to them. It is an eventbus handler.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]sender // form id → session id → client
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[string]sender)}
}

// register attaches a client. It reports false when another connection
// already holds the session.
func (h *Hub) register(formID, sessionID string, s sender) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[formID] == nil {
		h.clients[formID] = make(map[string]sender)
	}
	if _, held := h.clients[formID][sessionID]; held {
		return false
	}
	h.clients[formID][sessionID] = s
	return true
}

func (h *Hub) unregister(formID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[formID], sessionID)
	if len(h.clients[formID]) == 0 {
		delete(h.clients, formID)
	}
}

// Clients returns how many connections are attached to formID.
func (h *Hub) Clients(formID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[formID])
}

// Broadcast sends msg to every client of formID except the session named
// by skip.
func (h *Hub) Broadcast(ctx context.Context, formID, skip string, msg ServerMessage) {
	h.mu.RLock()
	targets := make(map[string]sender, len(h.clients[formID]))
	for id, s := range h.clients[formID] {
		if id != skip {
			targets[id] = s
		}
	}
	h.mu.RUnlock()

	for id, s := range targets {
		wctx, cancel := context.WithTimeout(ctx, broadcastTimeout)
		if err := s.send(wctx, msg); err != nil {
			log.Warn("wire: broadcast failed", "form", formID, "session", id, "error", err)
		}
		cancel()
	}
}

// HandleEvent forwards form_saved events to the other editors of the form.
func (h *Hub) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	if evt.EventType != event.FormSaved {
		return nil
	}
	var p event.FormPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		return err
	}
	h.Broadcast(ctx, evt.FormID, evt.Actor, ServerMessage{
		Type: TypeSaved,
		Data: SavedData{FormID: evt.FormID, Version: p.Version, By: evt.Actor},
	})
	return nil
}
