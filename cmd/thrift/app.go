package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/thrift/internal/chat"
	"github.com/Veraticus/thrift/internal/classifier"
	"github.com/Veraticus/thrift/internal/config"
	"github.com/Veraticus/thrift/internal/engine"
	"github.com/Veraticus/thrift/internal/examples"
	"github.com/Veraticus/thrift/internal/goals"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/plaid"
	"github.com/Veraticus/thrift/internal/service"
	"github.com/Veraticus/thrift/internal/sheets"
	"github.com/Veraticus/thrift/internal/storage"
	"github.com/Veraticus/thrift/internal/translate"
)

// app is the wired set of collaborators one command runs against.
type app struct {
	settings *config.Settings
	engine   *engine.Engine
	logger   *slog.Logger
	now      func() time.Time
	closers  []io.Closer
}

// Overridden in tests.
var (
	openApp = newApp

	newFetcher = func(cfg plaid.Config, logger *slog.Logger) (plaid.Fetcher, error) {
		return plaid.NewClient(cfg, logger)
	}

	newReportWriter = func(ctx context.Context, cfg sheets.Config, logger *slog.Logger) (sheets.ReportWriter, error) {
		return sheets.NewWriter(ctx, cfg, logger)
	}
)

// newApp opens the configured database and completion provider.
func newApp(ctx context.Context, settings *config.Settings) (*app, error) {
	logger := slog.Default()

	store, err := storage.NewSQLiteStorage(settings.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	svc, err := llm.New(ctx, settings.LLMConfig(), logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a, err := assemble(ctx, settings, store, svc, time.Now, logger)
	if err != nil {
		_ = svc.Close()
		_ = store.Close()
		return nil, err
	}
	a.closers = append(a.closers, svc, store)
	return a, nil
}

// assemble wires the engine over an open store and completion client and
// saves the configured profile so analysis sees current settings.
func assemble(ctx context.Context, settings *config.Settings, store service.Storage, client llm.Client, now func() time.Time, logger *slog.Logger) (*app, error) {
	var translator translate.Translator = translate.Noop{}
	if settings.User.Language != "" {
		translator = translate.New(client, "", logger)
	}

	synth := goals.NewSynthesizer(client, translator, settings.User.Language, logger).WithClock(now)
	dispatcher := chat.NewDispatcher(store, synth, client, logger).WithClock(now)
	eng := engine.New(store, classifier.New(client, examples.Default(), logger), translator, dispatcher, logger).WithClock(now)

	if err := store.SaveUser(ctx, settings.Profile()); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	return &app{
		settings: settings,
		engine:   eng,
		logger:   logger,
		now:      now,
	}, nil
}

func (a *app) userID() string {
	return a.settings.User.ID
}

// Close releases the store and the completion cache.
func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// withApp opens the app for the duration of fn.
func (e *env) withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx, e.settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Warn("Failed to close resources", "error", closeErr)
		}
	}()
	return fn(a)
}
