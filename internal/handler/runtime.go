package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/lint"
	"github.com/matthewbaird/commonapply/internal/logic"
	"github.com/matthewbaird/commonapply/internal/render"
	"github.com/matthewbaird/commonapply/internal/schemafile"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/types"
)

// maxLintBody caps the size of a document posted for linting.
const maxLintBody = 4 << 20

// RuntimeHandler serves the fill-time and design-time views of stored
// forms. It never writes.
type RuntimeHandler struct {
	forms store.Store
}

// NewRuntimeHandler creates a new RuntimeHandler.
func NewRuntimeHandler(forms store.Store) *RuntimeHandler {
	return &RuntimeHandler{forms: forms}
}

type answersRequest struct {
	Answers map[string]any `json:"answers"`
}

func (h *RuntimeHandler) load(w http.ResponseWriter, r *http.Request) (types.Schema, bool) {
	doc, err := h.forms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return types.Schema{}, false
	}
	return doc.Schema, true
}

// HandleEvaluate runs the conditional rules of every field against the
// posted answers.
// POST /v1/forms/{id}/evaluate
func (h *RuntimeHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	schema, ok := h.load(w, r)
	if !ok {
		return
	}
	snapshot := logic.Snapshot(schema.Fields, req.Answers)
	writeJSON(w, http.StatusOK, map[string]any{
		"results": logic.EvaluateAll(schema.Fields, snapshot),
	})
}

// HandleValidate checks the posted answers against the effective required
// flags and validation bounds.
// POST /v1/forms/{id}/validate
func (h *RuntimeHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	schema, ok := h.load(w, r)
	if !ok {
		return
	}
	issues := logic.ValidateAnswers(schema.Fields, logic.Snapshot(schema.Fields, req.Answers))
	if issues == nil {
		issues = []logic.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  len(issues) == 0,
		"issues": issues,
	})
}

// HandlePreview renders the form as a respondent sees it. Answers may be
// passed as a JSON object in the answers query parameter.
// GET /v1/forms/{id}/preview
func (h *RuntimeHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var answers map[string]any
	if raw := q.Get("answers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &answers); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ANSWERS", "answers must be a JSON object")
			return
		}
	}
	schema, ok := h.load(w, r)
	if !ok {
		return
	}

	var opts []render.PreviewOption
	if q.Get("validate") == "true" {
		opts = append(opts, render.WithValidation())
	}
	view := render.Preview(schema, answers, opts...)
	if q.Get("format") == "json" {
		writeJSON(w, http.StatusOK, view)
		return
	}
	writeHTML(w, func(buf *bytes.Buffer) error { return render.HTML(buf, view) })
}

// HandleCanvas renders the design canvas. The selected and tab query
// parameters drive the settings panel.
// GET /v1/forms/{id}/canvas
func (h *RuntimeHandler) HandleCanvas(w http.ResponseWriter, r *http.Request) {
	schema, ok := h.load(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	sel := editor.Selection{FieldID: q.Get("selected"), Tab: editor.TabBasic}
	switch tab := editor.Tab(q.Get("tab")); tab {
	case "":
	case editor.TabBasic, editor.TabStyle, editor.TabAdvanced:
		sel.Tab = tab
	default:
		writeError(w, http.StatusBadRequest, "INVALID_TAB", "unknown settings tab "+string(tab))
		return
	}

	view := render.Canvas(schema, sel)
	if q.Get("format") == "json" {
		writeJSON(w, http.StatusOK, view)
		return
	}
	writeHTML(w, func(buf *bytes.Buffer) error { return render.CanvasHTML(buf, view) })
}

// writeHTML renders into a buffer first so a template failure still
// produces a clean error response.
func writeHTML(w http.ResponseWriter, fn func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		log.Error("render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "RENDER_FAILED", "could not render form")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// HandleLint checks a schema document without storing it. YAML is accepted
// when the request says so in its Content-Type.
// POST /v1/lint
func (h *RuntimeHandler) HandleLint(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxLintBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		if raw, err = schemafile.ToJSON(raw, schemafile.FormatYAML); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_YAML", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, lint.Check(raw))
}

// HandleFieldTypes returns the designer palette and the rule operators.
// GET /v1/field-types
func HandleFieldTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"types":     types.Catalog(),
		"operators": logic.OperatorNames(),
	})
}

// HandleHealth reports liveness.
// GET /healthz
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
