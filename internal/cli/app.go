// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/raghunandan-r/chatraghu-tui/internal/actions"
	"github.com/raghunandan-r/chatraghu-tui/internal/config"
	"github.com/raghunandan-r/chatraghu-tui/internal/logging"
	"github.com/raghunandan-r/chatraghu-tui/internal/storage"
	"github.com/raghunandan-r/chatraghu-tui/internal/terminal"
)

// app holds what every session command needs: the effective config, the
// logger and the state store.
type app struct {
	cfg        *config.Config
	configPath string
	log        *slog.Logger
	store      storage.Store
	closers    []io.Closer

	// remotePinned is set by --no-ai; config edits cannot re-enable the
	// backend.
	remotePinned bool
}

// openApp loads the config, applies flag overrides and opens the logger and
// store.
func openApp(opts *options) (*app, error) {
	path, cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	config.SetGlobal(cfg)

	a := &app{cfg: cfg, configPath: path, remotePinned: opts.noAI}

	log, closer, err := logging.Open(cfg.Log.File, logging.LevelFromString(cfg.Log.Level))
	if err != nil {
		return nil, err
	}
	a.log = log
	a.closers = append(a.closers, closer)

	store, err := openStore(cfg.Store.Path)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, store)

	a.log.Debug("session starting", "config", path, "remote", cfg.Remote.Enabled, "store", cfg.Store.Path)
	return a, nil
}

// loadConfig reads --config or the default path.
func loadConfig(opts *options) (string, *config.Config, error) {
	path := opts.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return "", nil, err
		}
		path = p
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

func applyFlags(cfg *config.Config, opts *options) {
	if opts.endpoint != "" {
		cfg.Remote.Endpoint = opts.endpoint
	}
	if opts.noAI {
		cfg.Remote.Enabled = false
	}
	if opts.plain {
		cfg.UI.Plain = true
	}
	if opts.store != "" {
		cfg.Store.Path = opts.store
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
}

// openStore opens the SQLite database at path, the default database when
// path is empty, or an in-process store for "memory".
func openStore(path string) (storage.Store, error) {
	if path == config.MemoryStore {
		return storage.NewMemoryStore(), nil
	}
	if path == "" {
		p, err := config.DefaultStorePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return storage.OpenSQLite(path)
}

// context attaches the app logger to ctx.
func (a *app) context(ctx context.Context) context.Context {
	return logging.WithLogger(ctx, a.log)
}

// terminalOptions translates the config into terminal options.
func (a *app) terminalOptions() ([]terminal.Option, error) {
	cfg := a.cfg

	// A disabled remote may have no usable endpoint yet; it can be enabled
	// later by editing the config.
	endpoint, err := cfg.EndpointURL()
	if err != nil {
		if cfg.Remote.Enabled {
			return nil, fmt.Errorf("resolve endpoint: %w", err)
		}
		endpoint = ""
	}
	healthURL, err := cfg.HealthCheckURL()
	if err != nil {
		return nil, fmt.Errorf("resolve health url: %w", err)
	}

	return []terminal.Option{
		terminal.WithEndpoint(endpoint),
		terminal.WithTimeout(cfg.Remote.Timeout()),
		terminal.WithFrameInterval(cfg.UI.FrameInterval()),
		terminal.WithRemoteEnabled(cfg.Remote.Enabled),
		terminal.WithHealth(healthURL, cfg.Remote.HealthInterval()),
		terminal.WithStore(a.store, storage.DefaultDebounce),
		terminal.WithActions(actions.New(actions.WithSiteURL(cfg.UI.SiteURL))),
		terminal.WithLogger(a.log),
	}, nil
}

// watch follows config edits for the life of ctx. Only the remote flag is
// applied live.
func (a *app) watch(ctx context.Context, t *terminal.Terminal) {
	err := config.Watch(ctx, a.configPath, func(cfg *config.Config) {
		config.SetGlobal(cfg)
		if !a.remotePinned {
			t.SetRemoteEnabled(cfg.Remote.Enabled)
		}
	})
	if err != nil {
		a.log.Warn("config watch disabled", "path", a.configPath, "err", err)
	}
}

// Close releases the store and log file, in reverse order of opening.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && a.log != nil {
			a.log.Warn("close failed", "err", err)
		}
	}
	a.closers = nil
}
