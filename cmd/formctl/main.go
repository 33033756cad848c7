// Command formctl works with form schema files: lint them, evaluate rules,
// render previews and the design canvas, and fill them in a terminal.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/matthewbaird/commonapply/internal/logging"
)

// app carries what every command writes to.
type app struct {
	out io.Writer
}

type cli struct {
	LogLevel string `help:"Log level." default:"warn" enum:"debug,info,warn,error"`

	Lint     LintCmd     `cmd:"" help:"Check schema files for shape and reference errors."`
	Evaluate EvaluateCmd `cmd:"" help:"Evaluate conditional rules against answers."`
	Preview  PreviewCmd  `cmd:"" help:"Render the fill-time HTML preview."`
	Canvas   CanvasCmd   `cmd:"" help:"Show the design canvas in the terminal."`
	Fill     FillCmd     `cmd:"" help:"Fill a form interactively."`
	Catalog  CatalogCmd  `cmd:"" help:"List the field types."`
	Init     InitCmd     `cmd:"" help:"Write a sample schema file."`
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("formctl"),
		kong.Description("Form schema tooling."),
		kong.UsageOnError(),
		kong.Bind(&app{out: os.Stdout}),
	)
	cfg := logging.DefaultConfig()
	cfg.Level = c.LogLevel
	logging.Init(cfg)

	kctx.FatalIfErrorf(kctx.Run())
}
