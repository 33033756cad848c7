// Package lint checks a stored form schema before it is loaded into an
// editor. Shape is validated against an embedded CUE definition; rules that
// span fields (unique ids, references between fields and sections) are
// checked in Go on the decoded schema.
package lint

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/matthewbaird/commonapply/internal/types"
)

//go:embed schema.cue
var schemaDef string

// Severity grades an issue. Only errors make a schema invalid.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes.
const (
	CodeInvalidJSON      = "invalid_json"
	CodeShape            = "shape"
	CodeDuplicateID      = "duplicate_id"
	CodeUnknownType      = "unknown_type"
	CodeMissingOptions   = "missing_options"
	CodeStrayOptions     = "stray_options"
	CodeDanglingField    = "dangling_field_reference"
	CodeDanglingSection  = "dangling_section_reference"
	CodeSelfReference    = "self_reference"
	CodeUnknownOperator  = "unknown_operator"
	CodeUnknownAction    = "unknown_action"
	CodeUnknownLogic     = "unknown_logic"
	CodeEmptyConditions  = "empty_conditions"
	CodeInvalidPattern   = "invalid_pattern"
	CodeBoundsOrder      = "bounds_order"
	CodeIgnoredBounds    = "ignored_bounds"
	CodeLayoutRequired   = "layout_required"
	CodeDuplicateSection = "duplicate_section_id"
)

// Issue is one finding. Path locates it in the JSON document.
type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Path     string   `json:"path,omitempty"`
	FieldID  string   `json:"fieldId,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.Path
	if loc == "" {
		loc = "(document)"
	}
	return fmt.Sprintf("%s %s: %s [%s]", i.Severity, loc, i.Message, i.Code)
}

// Result is the outcome of a lint run.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues"`
}

// Errors returns the error-severity issues.
func (r Result) Errors() []Issue {
	var out []Issue
	for _, is := range r.Issues {
		if is.Severity == SeverityError {
			out = append(out, is)
		}
	}
	return out
}

func newResult(issues []Issue) Result {
	r := Result{Valid: true, Issues: issues}
	if r.Issues == nil {
		r.Issues = []Issue{}
	}
	for _, is := range issues {
		if is.Severity == SeverityError {
			r.Valid = false
		}
	}
	return r
}

// Linter validates schema documents. It is safe for concurrent use.
type Linter struct {
	mu  sync.Mutex
	def cue.Value
}

// New compiles the embedded schema definition.
func New() (*Linter, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(schemaDef, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema definition: %w", err)
	}
	def := v.LookupPath(cue.ParsePath("#Schema"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("looking up #Schema: %w", err)
	}
	return &Linter{def: def}, nil
}

var defaultLinter = sync.OnceValues(New)

// Check lints a JSON document with the shared linter.
func Check(raw []byte) Result {
	l, err := defaultLinter()
	if err != nil {
		return newResult([]Issue{{Severity: SeverityError, Code: CodeShape, Message: err.Error()}})
	}
	return l.Check(raw)
}

// Check validates the shape of raw and, when it decodes, the cross-field
// rules.
func (l *Linter) Check(raw []byte) Result {
	if !json.Valid(raw) {
		return newResult([]Issue{{Severity: SeverityError, Code: CodeInvalidJSON, Message: "document is not valid JSON"}})
	}

	issues := l.shape(raw)

	var s types.Schema
	if err := json.Unmarshal(raw, &s); err != nil {
		if len(issues) == 0 {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeShape, Message: err.Error()})
		}
		return newResult(issues)
	}
	return newResult(append(issues, Structure(s)...))
}

func (l *Linter) shape(raw []byte) []Issue {
	l.mu.Lock()
	err := l.validate(raw)
	l.mu.Unlock()
	if err == nil {
		return nil
	}
	var issues []Issue
	seen := map[string]bool{}
	for _, e := range cueerrors.Errors(err) {
		path := strings.Join(e.Path(), ".")
		msg := e.Error()
		if seen[path+msg] {
			continue
		}
		seen[path+msg] = true
		issues = append(issues, Issue{Severity: SeverityError, Code: CodeShape, Path: path, Message: msg})
	}
	return issues
}

// validate unifies the document with #Schema. Required fields must be
// present, so the result has to be concrete.
func (l *Linter) validate(raw []byte) error {
	expr, err := cuejson.Extract("schema.json", raw)
	if err != nil {
		return err
	}
	doc := l.def.Context().BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return err
	}
	v := l.def.Unify(doc)
	if err := v.Err(); err != nil {
		return err
	}
	return v.Validate(cue.Concrete(true))
}
