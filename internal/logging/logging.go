// Package logging configures the process-wide charmbracelet logger. Every
// other package logs through the log package's default logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // text, json or logfmt
	TimeFormat string `toml:"time_format"`
	ShowCaller bool   `toml:"show_caller"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "text",
		TimeFormat: "15:04:05",
	}
}

// New builds a logger writing to w. An unknown level falls back to info.
func New(w io.Writer, cfg Config) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		ReportCaller:    cfg.ShowCaller,
	})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	return logger
}

// Init installs a stderr logger built from cfg as the default logger.
func Init(cfg Config) {
	log.SetDefault(New(os.Stderr, cfg))
}
