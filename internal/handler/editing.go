package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/types"
)

// EditResponse is returned by every editing route.
type EditResponse struct {
	Form    store.FormDocument `json:"form"`
	Outcome editor.Outcome     `json:"outcome"`
}

type moveRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// edit loads the form, applies cmd and saves the result. A command that
// changes nothing is not saved. Field and section ids are checked before
// the command runs so that unknown ids answer 404.
func (h *FormHandler) edit(w http.ResponseWriter, r *http.Request, cmd editor.Command, status int) {
	doc, err := h.forms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if v, ok, err := expectedVersion(r); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VERSION", "If-Match must carry a form version")
		return
	} else if ok && v != doc.Version {
		writeError(w, http.StatusConflict, "VERSION_CONFLICT", store.ErrConflict.Error())
		return
	}

	switch cmd.Op {
	case editor.OpUpdateField, editor.OpRemoveField, editor.OpDuplicateField,
		editor.OpAddOption, editor.OpUpdateOption, editor.OpRemoveOption:
		if _, ok := doc.Schema.FieldByID(cmd.ID); !ok {
			writeError(w, http.StatusNotFound, "FIELD_NOT_FOUND", "field "+cmd.ID+" not found")
			return
		}
	case editor.OpUpdateSection, editor.OpRemoveSection:
		if _, ok := doc.Schema.SectionByID(cmd.ID); !ok {
			writeError(w, http.StatusNotFound, "SECTION_NOT_FOUND", "section "+cmd.ID+" not found")
			return
		}
	}

	ed := editor.New(doc.Schema)
	before := ed.Schema()
	out, err := ed.Apply(cmd)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_COMMAND", err.Error())
		return
	}
	if !out.Changed {
		writeJSON(w, http.StatusOK, EditResponse{Form: doc, Outcome: out})
		return
	}

	doc.Schema = ed.Schema()
	saved, err := h.forms.Save(r.Context(), doc)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}

	if evt, ok := event.ForCommand(saved.ID, cmd, out, before, saved.Schema); ok {
		evt.Actor = parseAuditContext(r).Actor
		recordEvent(r.Context(), h.recorder, evt)
	}
	h.recordSaved(r, saved)

	writeJSON(w, status, EditResponse{Form: saved, Outcome: out})
}

func optionIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_INDEX", "option index must be an integer")
		return 0, false
	}
	return n, true
}

// HandleAddField appends a field of the requested type.
// POST /v1/forms/{id}/fields
func (h *FormHandler) HandleAddField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type types.FieldType `json:"type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpAddField, FieldType: req.Type}, http.StatusCreated)
}

// HandleUpdateField patches the named attributes of a field.
// PATCH /v1/forms/{id}/fields/{field_id}
func (h *FormHandler) HandleUpdateField(w http.ResponseWriter, r *http.Request) {
	var patch editor.FieldPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if patch.IsZero() {
		writeError(w, http.StatusBadRequest, "EMPTY_PATCH", "patch names no attribute")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpUpdateField, ID: chi.URLParam(r, "field_id"), Field: &patch}, http.StatusOK)
}

// HandleRemoveField deletes a field.
// DELETE /v1/forms/{id}/fields/{field_id}
func (h *FormHandler) HandleRemoveField(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, editor.Command{Op: editor.OpRemoveField, ID: chi.URLParam(r, "field_id")}, http.StatusOK)
}

// HandleDuplicateField appends a copy of a field to the end of the form.
// POST /v1/forms/{id}/fields/{field_id}/duplicate
func (h *FormHandler) HandleDuplicateField(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, editor.Command{Op: editor.OpDuplicateField, ID: chi.URLParam(r, "field_id")}, http.StatusCreated)
}

// HandleReorderFields moves a field between positions.
// POST /v1/forms/{id}/fields/reorder
func (h *FormHandler) HandleReorderFields(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpReorder, From: req.From, To: req.To}, http.StatusOK)
}

// HandleAddOption appends an option to a choice field.
// POST /v1/forms/{id}/fields/{field_id}/options
func (h *FormHandler) HandleAddOption(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, editor.Command{Op: editor.OpAddOption, ID: chi.URLParam(r, "field_id")}, http.StatusCreated)
}

// HandleUpdateOption replaces the option at index.
// PUT /v1/forms/{id}/fields/{field_id}/options/{index}
func (h *FormHandler) HandleUpdateOption(w http.ResponseWriter, r *http.Request) {
	index, ok := optionIndex(w, r)
	if !ok {
		return
	}
	var req struct {
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpUpdateOption, ID: chi.URLParam(r, "field_id"), Index: index, Value: req.Value}, http.StatusOK)
}

// HandleRemoveOption deletes the option at index. The last option of a
// field is kept.
// DELETE /v1/forms/{id}/fields/{field_id}/options/{index}
func (h *FormHandler) HandleRemoveOption(w http.ResponseWriter, r *http.Request) {
	index, ok := optionIndex(w, r)
	if !ok {
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpRemoveOption, ID: chi.URLParam(r, "field_id"), Index: index}, http.StatusOK)
}

// HandleAddSection appends an empty section.
// POST /v1/forms/{id}/sections
func (h *FormHandler) HandleAddSection(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, editor.Command{Op: editor.OpAddSection}, http.StatusCreated)
}

// HandleUpdateSection patches a section.
// PATCH /v1/forms/{id}/sections/{section_id}
func (h *FormHandler) HandleUpdateSection(w http.ResponseWriter, r *http.Request) {
	var patch editor.SectionPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpUpdateSection, ID: chi.URLParam(r, "section_id"), Section: &patch}, http.StatusOK)
}

// HandleRemoveSection deletes a section. Its fields stay and become
// ungrouped.
// DELETE /v1/forms/{id}/sections/{section_id}
func (h *FormHandler) HandleRemoveSection(w http.ResponseWriter, r *http.Request) {
	h.edit(w, r, editor.Command{Op: editor.OpRemoveSection, ID: chi.URLParam(r, "section_id")}, http.StatusOK)
}

// HandleReorderSections moves a section between positions.
// POST /v1/forms/{id}/sections/reorder
func (h *FormHandler) HandleReorderSections(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpReorderSections, From: req.From, To: req.To}, http.StatusOK)
}

// HandleUpdateStyling merges form-wide styling.
// PATCH /v1/forms/{id}/styling
func (h *FormHandler) HandleUpdateStyling(w http.ResponseWriter, r *http.Request) {
	var patch editor.FormStylingPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	h.edit(w, r, editor.Command{Op: editor.OpUpdateFormStyling, FormStyling: &patch}, http.StatusOK)
}
