// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/config"
	"github.com/jeranaias/cody/internal/logging"
	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/notify"
	"github.com/jeranaias/cody/internal/ollama"
	"github.com/jeranaias/cody/internal/session"
	"github.com/jeranaias/cody/internal/state"
	"github.com/jeranaias/cody/internal/storage"
	"github.com/jeranaias/cody/internal/transcript"
	"github.com/jeranaias/cody/internal/ui/pet"
)

// saveTimeout bounds a single settings write.
const saveTimeout = 2 * time.Second

// appOptions come from the global flags.
type appOptions struct {
	// ConfigPath overrides the default config file lookup.
	ConfigPath string
	Endpoint   string
	Model      string
	LogLevel   string

	// Logger replaces the file logger built from the config (tests).
	Logger *zap.Logger
}

// =============================================================================
// CONFIG LOADING
// =============================================================================

// loadConfig loads the config from opts.ConfigPath or the default
// locations and applies the flag overrides. A broken default config file
// is reported through warn and replaced by defaults; a broken explicit
// file is an error.
func loadConfig(opts appOptions, warn func(error)) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFromPath(opts.ConfigPath)
		if err != nil {
			return nil, configError("load", err)
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, configError("load", err)
		}
		if err != nil && warn != nil {
			warn(err)
		}
	}

	if opts.Endpoint != "" {
		cfg.Ollama.Endpoint = opts.Endpoint
	}
	if opts.Model != "" {
		cfg.Ollama.Model = opts.Model
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, configError("validate", err)
	}
	return cfg, nil
}

// configFilePath is the file the running app watches for changes.
func configFilePath(opts appOptions) (string, error) {
	if opts.ConfigPath != "" {
		return filepath.Abs(opts.ConfigPath)
	}
	toml, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(toml); err == nil {
		return toml, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return jsonPath, nil
		}
	}
	// Nothing yet; watch for a TOML file being created.
	return toml, nil
}

// openStore opens the settings store, or an in-memory one when storage is
// disabled.
func openStore(cfg *config.Config) (*storage.SettingsStore, error) {
	if cfg.Storage.Disabled {
		return storage.OpenMemory()
	}
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}

// =============================================================================
// APP
// =============================================================================

// App is the wired set of components behind every interactive command.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    *storage.SettingsStore
	Bus      *notify.Bus
	Register *state.Register
	Client   *ollama.Client
	Host     *pet.Host
	Manager  *session.Manager

	// Restored is what the settings store held at startup.
	Restored storage.Settings

	ctx       context.Context
	cancel    context.CancelFunc
	opts      appOptions
	ownLogger bool
	watcher   *config.Watcher
	closers   []func()
}

// newApp loads the configuration and wires the components together. The
// returned App's context is cancelled by the quit menu item or when
// parent is done.
func newApp(parent context.Context, opts appOptions) (*App, error) {
	var pending []error
	cfg, err := loadConfig(opts, func(err error) { pending = append(pending, err) })
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	ownLogger := logger == nil
	if ownLogger {
		logPath, err := cfg.LogPath()
		if err != nil {
			return nil, configError("log path", err)
		}
		logger, err = logging.New(logging.Options{Level: cfg.Log.Level, File: logPath})
		if err != nil {
			return nil, configError("logger", err)
		}
	}
	for _, err := range pending {
		logger.Warn("config file unreadable, using defaults", zap.Error(err))
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Warn("settings store unavailable, settings will not persist", zap.Error(err))
		if store, err = storage.OpenMemory(); err != nil {
			return nil, fmt.Errorf("failed to open settings store: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(parent)
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Bus:       notify.NewBus(logger),
		Host:      pet.NewHost(),
		ctx:       ctx,
		cancel:    cancel,
		opts:      opts,
		ownLogger: ownLogger,
	}

	initialMode, initialSize := cfg.Pet.DefaultMode, cfg.Pet.DefaultSize
	if cfg.Pet.RestoreState {
		a.Restored = a.restore()
		if a.Restored.HasMode {
			initialMode = a.Restored.Mode
		}
		if a.Restored.HasSize {
			initialSize = a.Restored.Size
		}
	}
	a.Register = state.NewRegister(initialMode, initialSize, a.Bus)
	a.closers = append(a.closers, storage.Persist(a.Bus, store, logger))

	a.Client = ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:        cfg.Ollama.Endpoint,
		Model:          cfg.Ollama.Model,
		RequestTimeout: cfg.Ollama.RequestTimeout.Duration,
		HealthTimeout:  cfg.Ollama.HealthTimeout.Duration,
		Logger:         logger,
	})

	a.Manager, err = session.NewManager(session.Options{
		Register:   a.Register,
		Transcript: transcript.NewStoreWithCap(cfg.Chat.MaxStored),
		Client:     a.Client,
		Windows:    a.Host,
		Quit:       cancel,
		Logger:     logger,
		Settings:   session.SettingsFrom(cfg),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, a.Manager.FollowMode(a.Bus))

	logger.Info("cody started",
		zap.String("session_id", a.Manager.SessionID()),
		zap.String("endpoint", a.Client.Endpoint()),
		zap.String("model", a.Client.Model()),
		zap.Stringer("mode", initialMode),
		zap.Int("size", initialSize))
	return a, nil
}

func (a *App) restore() storage.Settings {
	ctx, cancel := context.WithTimeout(a.ctx, saveTimeout)
	defer cancel()
	s, err := a.Store.Load(ctx)
	if err != nil {
		a.Logger.Warn("failed to restore settings", zap.Error(err))
		return storage.Settings{}
	}
	if s.HasMode && !s.Mode.Valid() {
		s.HasMode = false
		s.Mode = mode.Default
	}
	return s
}

// Context is cancelled when the user quits.
func (a *App) Context() context.Context {
	return a.ctx
}

// WatchConfig reloads chat settings whenever the config file changes.
func (a *App) WatchConfig() error {
	path, err := configFilePath(a.opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	w, err := config.Watch(path, a.Logger, a.applyConfig)
	if err != nil {
		return err
	}
	a.watcher = w
	return nil
}

// applyConfig takes a reloaded config. Flag overrides still win.
func (a *App) applyConfig(cfg *config.Config) {
	if a.opts.Model != "" {
		cfg.Ollama.Model = a.opts.Model
	}
	a.Manager.Reconfigure(session.SettingsFrom(cfg))
}

// SavePosition records where the pet was left.
func (a *App) SavePosition(x, y int) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := a.Store.SaveWindowPosition(ctx, storage.Position{X: x, Y: y}); err != nil {
		a.Logger.Warn("failed to save window position", zap.Error(err))
	}
}

// Close stops the watcher, detaches subscribers and closes the store.
func (a *App) Close() {
	if a.watcher != nil {
		_ = a.watcher.Close()
		a.watcher = nil
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	a.cancel()
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("failed to close settings store", zap.Error(err))
	}
	if a.ownLogger {
		_ = a.Logger.Sync()
	}
}
