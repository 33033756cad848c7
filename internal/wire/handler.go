package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/render"
	"github.com/matthewbaird/commonapply/internal/session"
	"github.com/matthewbaird/commonapply/internal/store"
)

// Handler manages WebSocket connections for live editing. It serves
// /forms/{id}/ws: every connection opens an editor session on the form, or
// resumes the one named by the session query parameter. A session with
// unsaved edits outlives its connection until the idle timeout.
type Handler struct {
	sessions *session.Manager
	forms    store.Store
	recorder event.Recorder
	hub      *Hub
}

// NewHandler creates a WebSocket handler with all dependencies. recorder may
// be nil.
func NewHandler(sessions *session.Manager, forms store.Store, recorder event.Recorder, hub *Hub) *Handler {
	return &Handler{
		sessions: sessions,
		forms:    forms,
		recorder: recorder,
		hub:      hub,
	}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	formID := chi.URLParam(r, "id")
	doc, err := h.forms.Get(r.Context(), formID)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "form not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn("wire: websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	sess, resumed := h.attach(r.URL.Query().Get("session"), doc, connSender{conn: conn})
	defer func() {
		if !sess.Dirty {
			h.sessions.Remove(sess.ID)
		}
		h.hub.unregister(doc.ID, sess.ID)
	}()

	ctx := r.Context()
	log.Debug("wire: session opened", "session", sess.ID, "form", doc.ID, "resumed", resumed)

	h.send(ctx, conn, ServerMessage{
		Type: TypeSession,
		Data: SessionData{
			SessionID: sess.ID,
			FormID:    doc.ID,
			Version:   sess.BaseVersion,
			Mode:      string(sess.Mode),
			Resumed:   resumed,
			Sessions:  len(h.sessions.ForForm(doc.ID)),
		},
	})
	h.sendSchema(ctx, conn, sess, "", nil)
	if sess.Mode == session.ModePreview {
		h.sendPreview(ctx, conn, sess, "", false)
	} else {
		h.sendCanvas(ctx, conn, sess, "")
	}

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Debug("wire: connection closed", "session", sess.ID, "status", websocket.CloseStatus(err))
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case TypeEdit:
			h.handleEdit(ctx, conn, sess, msg)
		case TypeSelect:
			h.handleSelect(ctx, conn, sess, msg)
		case TypeMode:
			h.handleMode(ctx, conn, sess, msg)
		case TypeAnswers:
			h.handleAnswers(ctx, conn, sess, msg)
		case TypeSave:
			h.handleSave(ctx, conn, sess, msg)
		case TypePing:
			h.send(ctx, conn, ServerMessage{Type: TypePong, RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

// attach resumes the session named by resumeID when it belongs to the form
// and no other connection holds it. Otherwise it opens a fresh session.
func (h *Handler) attach(resumeID string, doc store.FormDocument, s sender) (*session.Session, bool) {
	if resumeID != "" {
		if sess := h.sessions.Get(resumeID); sess != nil && sess.FormID == doc.ID && h.hub.register(doc.ID, sess.ID, s) {
			sess.Touch()
			return sess, true
		}
	}
	sess := h.sessions.Create(doc.ID, doc.Schema, doc.Version)
	h.hub.register(doc.ID, sess.ID, s)
	return sess, false
}

func (h *Handler) handleEdit(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var cmd EditData
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid edit data")
		return
	}
	out, err := sess.Editor.Apply(cmd)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_command", err.Error())
		return
	}
	if out.Changed {
		sess.Dirty = true
	}
	h.sendSchema(ctx, conn, sess, msg.ID, &out)
	h.sendCanvas(ctx, conn, sess, msg.ID)
	if sess.Mode == session.ModePreview {
		h.sendPreview(ctx, conn, sess, msg.ID, false)
	}
}

func (h *Handler) handleSelect(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data SelectData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid select data")
		return
	}
	if !sess.Editor.Select(data.FieldID) {
		h.sendError(ctx, conn, msg.ID, "unknown_field", fmt.Sprintf("no field with id %q", data.FieldID))
		return
	}
	if data.Tab != "" && !sess.Editor.SetTab(data.Tab) {
		h.sendError(ctx, conn, msg.ID, "unknown_tab", fmt.Sprintf("unknown settings tab %q", data.Tab))
		return
	}
	h.sendCanvas(ctx, conn, sess, msg.ID)
}

func (h *Handler) handleMode(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data ModeData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid mode data")
		return
	}
	switch session.Mode(data.Mode) {
	case session.ModeDesign:
		sess.Mode = session.ModeDesign
		h.sendCanvas(ctx, conn, sess, msg.ID)
	case session.ModePreview:
		sess.Mode = session.ModePreview
		h.sendPreview(ctx, conn, sess, msg.ID, false)
	default:
		h.sendError(ctx, conn, msg.ID, "unknown_mode", fmt.Sprintf("unknown mode %q", data.Mode))
	}
}

func (h *Handler) handleAnswers(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data AnswersData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid answers data")
		return
	}
	if data.Answers == nil {
		data.Answers = map[string]any{}
	}
	sess.Answers = data.Answers
	h.sendPreview(ctx, conn, sess, msg.ID, data.Validate)
}

func (h *Handler) handleSave(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	var data SaveData
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid save data")
			return
		}
	}

	doc, err := h.forms.Get(ctx, sess.FormID)
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "store_error", err.Error())
		return
	}
	doc.Version = sess.BaseVersion
	doc.Schema = sess.Editor.Schema()
	if data.Name != "" {
		doc.Name = data.Name
	}

	saved, err := h.forms.Save(ctx, doc)
	if errors.Is(err, store.ErrConflict) {
		h.sendError(ctx, conn, msg.ID, "conflict", fmt.Sprintf("form was saved elsewhere after version %d", sess.BaseVersion))
		return
	}
	if err != nil {
		h.sendError(ctx, conn, msg.ID, "store_error", err.Error())
		return
	}
	sess.Rebase(saved.Version)

	if h.recorder != nil {
		evt := event.NewFormSaved(event.FormPayload{
			FormID:  saved.ID,
			Name:    saved.Name,
			Version: saved.Version,
			Fields:  len(saved.Schema.Fields),
		})
		evt.Actor = sess.ID
		if err := h.recorder.Record(ctx, evt); err != nil {
			log.Error("wire: recording save", "form", saved.ID, "error", err)
		}
	}

	h.send(ctx, conn, ServerMessage{
		Type:      TypeSaved,
		RequestID: msg.ID,
		Data:      SavedData{FormID: saved.ID, Version: saved.Version, By: sess.ID},
	})
}

func (h *Handler) sendSchema(ctx context.Context, conn *websocket.Conn, sess *session.Session, requestID string, out *editor.Outcome) {
	h.send(ctx, conn, ServerMessage{
		Type:      TypeSchema,
		RequestID: requestID,
		Data: SchemaData{
			Schema:  sess.Editor.Schema(),
			Version: sess.BaseVersion,
			Dirty:   sess.Dirty,
			Outcome: out,
		},
	})
}

func (h *Handler) sendCanvas(ctx context.Context, conn *websocket.Conn, sess *session.Session, requestID string) {
	h.send(ctx, conn, ServerMessage{
		Type:      TypeCanvas,
		RequestID: requestID,
		Data:      render.Canvas(sess.Editor.Schema(), sess.Editor.Selection()),
	})
}

func (h *Handler) sendPreview(ctx context.Context, conn *websocket.Conn, sess *session.Session, requestID string, validate bool) {
	var opts []render.PreviewOption
	if validate {
		opts = append(opts, render.WithValidation())
	}
	h.send(ctx, conn, ServerMessage{
		Type:      TypePreview,
		RequestID: requestID,
		Data:      render.Preview(sess.Editor.Schema(), sess.Answers, opts...),
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Warn("wire: write error", "error", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      TypeError,
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
