package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/lint"
	"github.com/matthewbaird/commonapply/internal/logic"
	"github.com/matthewbaird/commonapply/internal/render"
	"github.com/matthewbaird/commonapply/internal/schemafile"
	"github.com/matthewbaird/commonapply/internal/seed"
	"github.com/matthewbaird/commonapply/internal/types"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// AnswersFlags holds answers given as a JSON object.
type AnswersFlags struct {
	Answers     string `help:"Answers as a JSON object." placeholder:"JSON"`
	AnswersFile string `help:"Read answers from a JSON file." type:"existingfile"`
}

func (f AnswersFlags) load() (map[string]any, error) {
	raw := []byte(f.Answers)
	if f.AnswersFile != "" {
		data, err := os.ReadFile(f.AnswersFile)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var answers map[string]any
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, fmt.Errorf("answers must be a JSON object: %w", err)
	}
	return answers, nil
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// LintCmd checks one or more schema files.
type LintCmd struct {
	Files    []string `arg:"" type:"existingfile" help:"Schema files (.json, .yaml)."`
	Warnings bool     `help:"Fail on warnings too." short:"w"`
}

func (c *LintCmd) Run(a *app) error {
	failed := 0
	for _, path := range c.Files {
		raw, err := schemafile.ReadJSON(path)
		if err != nil {
			return err
		}
		res := lint.Check(raw)
		for _, is := range res.Issues {
			fmt.Fprintf(a.out, "%s: %s\n", path, is)
		}
		if !res.Valid || (c.Warnings && len(res.Issues) > 0) {
			failed++
			continue
		}
		fmt.Fprintf(a.out, "%s: ok\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed lint", failed, len(c.Files))
	}
	return nil
}

// EvaluateCmd prints the effective state of every field.
type EvaluateCmd struct {
	File     string `arg:"" type:"existingfile" help:"Schema file."`
	Validate bool   `help:"Also validate the answers."`
	AnswersFlags
}

func (c *EvaluateCmd) Run(a *app) error {
	schema, err := schemafile.Load(c.File)
	if err != nil {
		return err
	}
	answers, err := c.load()
	if err != nil {
		return err
	}
	snapshot := logic.Snapshot(schema.Fields, answers)
	out := struct {
		Results map[string]logic.Result `json:"results"`
		Issues  []logic.Issue           `json:"issues,omitempty"`
	}{Results: logic.EvaluateAll(schema.Fields, snapshot)}
	if c.Validate {
		out.Issues = logic.ValidateAnswers(schema.Fields, snapshot)
	}
	if err := writeJSON(a, out); err != nil {
		return err
	}
	if len(out.Issues) > 0 {
		return fmt.Errorf("%d answer(s) failed validation", len(out.Issues))
	}
	return nil
}

// PreviewCmd renders the HTML preview, optionally re-rendering whenever the
// schema file changes.
type PreviewCmd struct {
	File     string `arg:"" type:"existingfile" help:"Schema file."`
	Output   string `short:"o" help:"Write HTML to this file instead of stdout." type:"path"`
	Validate bool   `help:"Show validation messages."`
	Watch    bool   `help:"Re-render when the schema file changes. Needs --output."`
	AnswersFlags
}

// writeFile renders to a buffer so a failed render leaves the previous
// output in place.
func (c *PreviewCmd) writeFile(schema types.Schema, answers map[string]any) error {
	var buf strings.Builder
	if err := render.HTML(&buf, render.Preview(schema, answers, c.previewOpts()...)); err != nil {
		return err
	}
	return os.WriteFile(c.Output, []byte(buf.String()), 0o644)
}

func (c *PreviewCmd) Run(a *app) error {
	answers, err := c.load()
	if err != nil {
		return err
	}
	schema, err := schemafile.Load(c.File)
	if err != nil {
		return err
	}
	if c.Output == "" {
		if c.Watch {
			return errors.New("--watch needs --output")
		}
		return render.HTML(a.out, render.Preview(schema, answers, c.previewOpts()...))
	}
	if err := c.writeFile(schema, answers); err != nil {
		return err
	}
	if !c.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return c.watch(ctx, answers)
}

func (c *PreviewCmd) previewOpts() []render.PreviewOption {
	if c.Validate {
		return []render.PreviewOption{render.WithValidation()}
	}
	return nil
}

func (c *PreviewCmd) watch(ctx context.Context, answers map[string]any) error {
	w, err := schemafile.NewWatcher(c.File, schemafile.DefaultDebounce, func(s types.Schema, err error) {
		if err != nil {
			log.Error("reload failed", "file", c.File, "error", err)
			return
		}
		if err := c.writeFile(s, answers); err != nil {
			log.Error("render failed", "error", err)
			return
		}
		log.Info("preview updated", "output", c.Output, "fields", len(s.Fields))
	})
	if err != nil {
		return err
	}
	w.Start()
	log.Info("watching schema", "file", c.File)
	<-ctx.Done()
	return w.Stop()
}

// CanvasCmd prints the design canvas.
type CanvasCmd struct {
	File     string `arg:"" type:"existingfile" help:"Schema file."`
	Selected string `help:"Field id to open in the settings panel."`
	Tab      string `help:"Settings tab." default:"basic" enum:"basic,style,advanced"`
}

func (c *CanvasCmd) Run(a *app) error {
	schema, err := schemafile.Load(c.File)
	if err != nil {
		return err
	}
	view := render.Canvas(schema, editor.Selection{FieldID: c.Selected, Tab: editor.Tab(c.Tab)})
	_, err = fmt.Fprintln(a.out, render.TerminalCanvas(view))
	return err
}

// FillCmd runs the interactive fill form and prints the answers.
type FillCmd struct {
	File string `arg:"" type:"existingfile" help:"Schema file."`
	AnswersFlags
}

func (c *FillCmd) Run(a *app) error {
	schema, err := schemafile.Load(c.File)
	if err != nil {
		return err
	}
	initial, err := c.load()
	if err != nil {
		return err
	}
	form, state := render.Fill(schema, initial)
	if err := form.Run(); err != nil {
		return err
	}
	answers := state.Answers()
	issues := logic.ValidateAnswers(schema.Fields, logic.Snapshot(schema.Fields, answers))
	if err := writeJSON(a, map[string]any{"answers": answers, "issues": issues}); err != nil {
		return err
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d answer(s) failed validation", len(issues))
	}
	return nil
}

// CatalogCmd lists field types grouped by palette category.
type CatalogCmd struct{}

func (c *CatalogCmd) Run(a *app) error {
	var current types.Category
	for _, e := range types.Catalog() {
		if e.Category != current {
			current = e.Category
			fmt.Fprintln(a.out, headingStyle.Render(strings.ToUpper(string(current))))
		}
		fmt.Fprintf(a.out, "  %-10s %s\n", e.Type, mutedStyle.Render(e.Label))
	}
	fmt.Fprintln(a.out, headingStyle.Render("OPERATORS"))
	fmt.Fprintf(a.out, "  %s\n", strings.Join(logic.OperatorNames(), ", "))
	return nil
}

// InitCmd writes the sample application form.
type InitCmd struct {
	Path  string `arg:"" type:"path" help:"Where to write the schema (.json, .yaml)."`
	Force bool   `help:"Overwrite an existing file."`
}

func (c *InitCmd) Run(a *app) error {
	if _, err := os.Stat(c.Path); err == nil && !c.Force {
		return fmt.Errorf("%s exists, use --force to overwrite", c.Path)
	}
	schema, err := seed.SampleSchema()
	if err != nil {
		return err
	}
	if err := schemafile.Save(c.Path, schema); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "wrote %s (%d fields)\n", c.Path, len(schema.Fields))
	return nil
}
