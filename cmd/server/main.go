package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/matthewbaird/commonapply/internal/activity"
	"github.com/matthewbaird/commonapply/internal/config"
	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/eventbus"
	"github.com/matthewbaird/commonapply/internal/logging"
	"github.com/matthewbaird/commonapply/internal/seed"
	"github.com/matthewbaird/commonapply/internal/server"
	"github.com/matthewbaird/commonapply/internal/session"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/wire"
)

var cli struct {
	Config string `help:"Path to a TOML config file." type:"path" env:"COMMONAPPLY_CONFIG"`
	Seed   bool   `help:"Store a sample form when the database is empty."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("commonapply-server"),
		kong.Description("Form designer and preview API."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	kctx.FatalIfErrorf(err)
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal("server error", "error", err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	var (
		forms store.Store
		acts  activity.Store
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		forms, acts = store.NewMemoryStore(), activity.NewMemoryStore()
		log.Warn("using in-memory storage, forms are lost on exit")
	default:
		drv, err := store.OpenSQLite(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer drv.Close()

		fs := store.NewSQLStore(drv)
		if err := fs.CreateTable(ctx); err != nil {
			return fmt.Errorf("creating forms table: %w", err)
		}
		as := activity.NewSQLStore(drv)
		if err := as.CreateTable(ctx); err != nil {
			return fmt.Errorf("creating activity table: %w", err)
		}
		forms, acts = fs, as
		log.Info("database ready", "dsn", cfg.Database.DSN)
	}

	hub := wire.NewHub()
	bus := eventbus.New(cfg.Bus.BufferSize)
	bus.Subscribe("log", eventbus.NewLogConsumer())
	bus.Subscribe("lint", eventbus.NewLintConsumer(forms))
	bus.Subscribe("hub", hub)
	bus.Start(ctx)
	defer bus.Stop()

	rec := event.NewActivityRecorder(acts)
	rec.SetPublisher(bus)

	if cli.Seed {
		if err := seed.SeedSampleForm(ctx, forms, rec); err != nil {
			return err
		}
	}

	return server.Run(ctx, server.Config{
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		JanitorInterval: cfg.Session.JanitorInterval,
		Forms:           forms,
		Activity:        acts,
		Recorder:        rec,
		Sessions:        session.NewManager(cfg.Session.MaxAge, cfg.Session.IdleTimeout),
		Hub:             hub,
	})
}
