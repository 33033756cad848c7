package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/lint"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/types"
)

// FormHandler implements form document CRUD and the stateless editing
// routes. recorder may be nil.
type FormHandler struct {
	forms    store.Store
	recorder event.Recorder
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(forms store.Store, recorder event.Recorder) *FormHandler {
	return &FormHandler{forms: forms, recorder: recorder}
}

// formRequest is the body of create and replace.
type formRequest struct {
	ID      string          `json:"id,omitempty"`
	Name    string          `json:"name"`
	Owner   string          `json:"owner,omitempty"`
	Version int             `json:"version,omitempty"`
	Schema  json.RawMessage `json:"schema,omitempty"`
}

// decodeSchema lints raw and decodes it. An absent schema is the empty
// form. On failure the response has been written.
func decodeSchema(w http.ResponseWriter, raw json.RawMessage) (types.Schema, bool) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return types.Schema{}, true
	}
	if res := lint.Check(raw); !res.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "schema failed validation",
			"code":   "INVALID_SCHEMA",
			"issues": res.Errors(),
		})
		return types.Schema{}, false
	}
	var s types.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SCHEMA", err.Error())
		return types.Schema{}, false
	}
	return s, true
}

// HandleCreate stores a new form.
// POST /v1/forms
func (h *FormHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	schema, ok := decodeSchema(w, req.Schema)
	if !ok {
		return
	}
	audit := parseAuditContext(r)
	if req.Owner == "" {
		req.Owner = audit.Actor
	}

	doc, err := h.forms.Create(r.Context(), store.FormDocument{
		ID:     req.ID,
		Name:   req.Name,
		Owner:  req.Owner,
		Schema: schema,
	})
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	evt := event.NewFormCreated(event.FormPayload{FormID: doc.ID, Name: doc.Name, Version: doc.Version, Fields: len(doc.Schema.Fields)})
	evt.Actor = audit.Actor
	recordEvent(r.Context(), h.recorder, evt)

	writeJSON(w, http.StatusCreated, doc)
}

// HandleList lists forms, most recently updated first.
// GET /v1/forms
func (h *FormHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	docs, err := h.forms.List(r.Context(), store.ListOptions{
		Owner: r.URL.Query().Get("owner"),
		Limit: parseLimit(r, 100, 500),
	})
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if docs == nil {
		docs = []store.FormDocument{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"forms":       docs,
		"total_count": len(docs),
	})
}

// HandleGet returns one form.
// GET /v1/forms/{id}
func (h *FormHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := h.forms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleReplace replaces the schema and name of a form. The request must
// carry the version it was based on, in the body or an If-Match header.
// PUT /v1/forms/{id}
func (h *FormHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if v, ok, err := expectedVersion(r); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VERSION", "If-Match must carry a form version")
		return
	} else if ok {
		req.Version = v
	}
	if req.Version <= 0 {
		writeError(w, http.StatusBadRequest, "MISSING_VERSION", "version is required")
		return
	}
	schema, ok := decodeSchema(w, req.Schema)
	if !ok {
		return
	}

	doc, err := h.forms.Save(r.Context(), store.FormDocument{
		ID:      chi.URLParam(r, "id"),
		Name:    req.Name,
		Schema:  schema,
		Version: req.Version,
	})
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	h.recordSaved(r, doc)
	writeJSON(w, http.StatusOK, doc)
}

// HandleDelete removes a form.
// DELETE /v1/forms/{id}
func (h *FormHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.forms.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if err := h.forms.Delete(r.Context(), id); err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	evt := event.NewFormDeleted(event.FormPayload{FormID: doc.ID, Name: doc.Name, Version: doc.Version, Fields: len(doc.Schema.Fields)})
	evt.Actor = parseAuditContext(r).Actor
	recordEvent(r.Context(), h.recorder, evt)

	w.WriteHeader(http.StatusNoContent)
}

func (h *FormHandler) recordSaved(r *http.Request, doc store.FormDocument) {
	evt := event.NewFormSaved(event.FormPayload{FormID: doc.ID, Name: doc.Name, Version: doc.Version, Fields: len(doc.Schema.Fields)})
	evt.Actor = parseAuditContext(r).Actor
	recordEvent(r.Context(), h.recorder, evt)
}
