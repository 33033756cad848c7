package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/lint"
	"github.com/matthewbaird/commonapply/internal/store"
)

// LintConsumer re-lints a form every time it is saved and logs what it
// finds. Saves are never blocked by lint findings.
type LintConsumer struct {
	forms  store.Store
	report func(formID string, res lint.Result)
}

// NewLintConsumer creates a consumer reading saved forms from forms.
func NewLintConsumer(forms store.Store) *LintConsumer {
	return &LintConsumer{forms: forms}
}

// OnReport registers a callback invoked with every lint result.
func (c *LintConsumer) OnReport(fn func(formID string, res lint.Result)) {
	c.report = fn
}

// HandleEvent lints the form named by a form_saved event.
func (c *LintConsumer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	if evt.EventType != event.FormSaved {
		return nil
	}
	doc, err := c.forms.Get(ctx, evt.FormID)
	if err != nil {
		return fmt.Errorf("loading form %s: %w", evt.FormID, err)
	}
	raw, err := json.Marshal(doc.Schema)
	if err != nil {
		return fmt.Errorf("encoding form %s: %w", evt.FormID, err)
	}

	res := lint.Check(raw)
	for _, is := range res.Issues {
		logger := log.Warn
		if is.Severity == lint.SeverityError {
			logger = log.Error
		}
		logger("lint: "+is.Message, "form", evt.FormID, "code", is.Code, "path", is.Path)
	}
	if c.report != nil {
		c.report(evt.FormID, res)
	}
	return nil
}
