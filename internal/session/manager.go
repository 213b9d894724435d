// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/cody/internal/config"
	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/notify"
	"github.com/jeranaias/cody/internal/ollama"
	"github.com/jeranaias/cody/internal/state"
	"github.com/jeranaias/cody/internal/transcript"
	"github.com/jeranaias/cody/internal/tray"
)

// ThrottledMessage is the reply error when submissions exceed
// chat.max_per_minute.
const ThrottledMessage = "Too many messages, slow down"

// =============================================================================
// COLLABORATORS
// =============================================================================

// Inference is the part of the Ollama client the manager needs.
type Inference interface {
	Send(ctx context.Context, window []transcript.Message) ollama.Reply
	SetModel(model string)
}

// Settings is the reloadable part of the configuration.
type Settings struct {
	HistoryWindow int
	SystemPrompt  string
	MaxPerMinute  int
	Model         string
}

// SettingsFrom extracts the manager's settings from a loaded config.
func SettingsFrom(cfg *config.Config) Settings {
	return Settings{
		HistoryWindow: cfg.Chat.HistoryWindow,
		SystemPrompt:  cfg.Chat.SystemPrompt,
		MaxPerMinute:  cfg.Chat.MaxPerMinute,
		Model:         cfg.Ollama.Model,
	}
}

// Options wires a Manager. Register, Transcript and Client are required.
type Options struct {
	Register   *state.Register
	Transcript *transcript.Store
	Client     Inference
	Windows    WindowManager
	Quit       func()
	Logger     *zap.Logger
	Settings   Settings
}

// Info is a point-in-time view of the session for status displays.
type Info struct {
	SessionID    string
	StartTime    time.Time
	LastActivity time.Time
	Idle         time.Duration // since LastActivity
	Mode         mode.Mode
	Size         int
	Messages     int
	Model        string
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager routes triggers to the state register, transcript and client.
// All methods are safe to call from any goroutine. No lock is held while
// talking to Ollama, so concurrent chat turns may interleave.
type Manager struct {
	reg        *state.Register
	transcript *transcript.Store
	client     Inference
	windows    WindowManager
	quit       func()
	logger     *zap.Logger

	mu           sync.Mutex
	sessionID    string
	startTime    time.Time
	lastActivity time.Time
	settings     Settings
	limiter      *rate.Limiter
}

// NewManager creates a session manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Register == nil || opts.Transcript == nil || opts.Client == nil {
		return nil, errors.New("session: register, transcript and client are required")
	}
	if opts.Settings.HistoryWindow <= 0 {
		opts.Settings.HistoryWindow = config.DefaultHistoryWindow
	}
	if opts.Settings.SystemPrompt == "" {
		opts.Settings.SystemPrompt = config.DefaultSystemPrompt
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := time.Now()
	m := &Manager{
		reg:          opts.Register,
		transcript:   opts.Transcript,
		client:       opts.Client,
		windows:      opts.Windows,
		quit:         opts.Quit,
		sessionID:    uuid.NewString(),
		startTime:    now,
		lastActivity: now,
		settings:     opts.Settings,
		limiter:      newLimiter(opts.Settings.MaxPerMinute),
	}
	m.logger = logger.Named("session").With(zap.String("session_id", m.sessionID))
	return m, nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the session's unique id.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// StartTime returns when the session started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// LastActivity returns when the last trigger was handled.
func (m *Manager) LastActivity() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastActivity
}

// Info returns a snapshot for status output.
func (m *Manager) Info() Info {
	m.mu.Lock()
	info := Info{
		SessionID:    m.sessionID,
		StartTime:    m.startTime,
		LastActivity: m.lastActivity,
		Model:        m.settings.Model,
	}
	m.mu.Unlock()
	info.Idle = time.Since(info.LastActivity)

	snap := m.reg.Snapshot()
	info.Mode = snap.Mode
	info.Size = snap.Size
	info.Messages = m.transcript.Len()
	return info
}

// Settings returns the settings currently in effect.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Reconfigure applies reloaded settings. Mode, size and the transcript are
// left alone. Invalid window sizes and empty prompts keep their previous
// values.
func (m *Manager) Reconfigure(s Settings) {
	m.mu.Lock()
	if s.HistoryWindow <= 0 {
		s.HistoryWindow = m.settings.HistoryWindow
	}
	if s.SystemPrompt == "" {
		s.SystemPrompt = m.settings.SystemPrompt
	}
	if s.MaxPerMinute != m.settings.MaxPerMinute {
		m.limiter = newLimiter(s.MaxPerMinute)
	}
	m.settings = s
	m.mu.Unlock()

	m.client.SetModel(s.Model)
	m.logger.Info("settings reloaded",
		zap.Int("history_window", s.HistoryWindow),
		zap.Int("max_per_minute", s.MaxPerMinute),
		zap.String("model", s.Model))
}

func (m *Manager) touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// =============================================================================
// CHAT
// =============================================================================

// SubmitChat runs one chat turn. The user message is recorded before the
// request; the assistant reply only when the request succeeds. The request
// is detached from ctx's cancellation so a closed window does not abort a
// turn that is already in flight.
func (m *Manager) SubmitChat(ctx context.Context, text string) ollama.Reply {
	m.mu.Lock()
	m.lastActivity = time.Now()
	settings := m.settings
	limiter := m.limiter
	m.mu.Unlock()

	if limiter != nil && !limiter.Allow() {
		m.logger.Debug("chat throttled")
		return ollama.Reply{Success: false, Error: ThrottledMessage}
	}

	m.transcript.Append(transcript.RoleUser, text)
	window := m.transcript.Window(settings.HistoryWindow, settings.SystemPrompt)

	start := time.Now()
	reply := m.client.Send(context.WithoutCancel(ctx), window)
	if reply.Success {
		m.transcript.Append(transcript.RoleAssistant, reply.Response)
	}

	m.logger.Debug("chat turn",
		zap.Bool("success", reply.Success),
		zap.Int("window", len(window)),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("error", reply.Error))
	return reply
}

// History returns a copy of the conversation so far.
func (m *Manager) History() []transcript.Message {
	return m.transcript.Messages()
}

// ClearHistory forgets the conversation.
func (m *Manager) ClearHistory() {
	m.touch()
	m.transcript.Clear()
	m.logger.Debug("history cleared")
}

// =============================================================================
// MODE AND SIZE
// =============================================================================

// Mode returns the current interaction mode.
func (m *Manager) Mode() mode.Mode {
	return m.reg.Mode()
}

// SetMode sets the interaction mode.
func (m *Manager) SetMode(md mode.Mode) {
	m.touch()
	m.reg.SetMode(md)
}

// Size returns the current character size.
func (m *Manager) Size() int {
	return m.reg.Size()
}

// SetSize sets the character size.
func (m *Manager) SetSize(n int) error {
	m.touch()
	return m.reg.SetSize(n)
}

// HandleHotkey advances the interaction mode and returns the new one.
func (m *Manager) HandleHotkey() mode.Mode {
	m.touch()
	next := m.reg.Advance()
	m.logger.Debug("hotkey", zap.Stringer("mode", next))
	return next
}

// HandleMenu dispatches a tray menu click. Unknown ids are ignored.
func (m *Manager) HandleMenu(id string) error {
	action, ok := tray.ParseItem(id)
	if !ok {
		m.logger.Debug("ignoring unknown menu item", zap.String("id", id))
		return nil
	}
	m.touch()

	switch action.Kind {
	case tray.ActionSetSize:
		return m.reg.SetSize(action.Size)
	case tray.ActionSetMode:
		m.reg.SetMode(action.Mode)
	case tray.ActionQuit:
		m.logger.Info("quit requested from menu")
		if m.quit != nil {
			m.quit()
		}
	}
	return nil
}

// =============================================================================
// WINDOWS
// =============================================================================

// ToggleChat hides a visible chat window, shows and focuses a hidden one,
// and creates one when none exists.
func (m *Manager) ToggleChat() error {
	if m.windows == nil {
		return ErrNoWindows
	}
	m.touch()

	if w, ok := m.windows.ChatWindow(); ok {
		visible, err := w.IsVisible()
		if err != nil {
			return fmt.Errorf("failed to query chat window: %w", err)
		}
		if visible {
			if err := w.Hide(); err != nil {
				return fmt.Errorf("failed to hide chat window: %w", err)
			}
			return nil
		}
		if err := w.Show(); err != nil {
			return fmt.Errorf("failed to show chat window: %w", err)
		}
		if err := w.Focus(); err != nil {
			return fmt.Errorf("failed to focus chat window: %w", err)
		}
		return nil
	}

	w, err := m.windows.CreateChatWindow()
	if err != nil {
		return fmt.Errorf("failed to create chat window: %w", err)
	}
	if err := w.Focus(); err != nil {
		return fmt.Errorf("failed to focus chat window: %w", err)
	}
	return nil
}

// CloseChat hides the chat window if it exists.
func (m *Manager) CloseChat() error {
	if m.windows == nil {
		return ErrNoWindows
	}
	w, ok := m.windows.ChatWindow()
	if !ok {
		return nil
	}
	if err := w.Hide(); err != nil {
		return fmt.Errorf("failed to hide chat window: %w", err)
	}
	return nil
}

// SetIgnoreCursor makes the pet window transparent to the pointer.
func (m *Manager) SetIgnoreCursor(ignore bool) error {
	if m.windows == nil {
		return ErrNoWindows
	}
	if err := m.windows.SetIgnoreCursor(ignore); err != nil {
		return fmt.Errorf("failed to set cursor passthrough: %w", err)
	}
	return nil
}

// StartDrag begins moving the pet window.
func (m *Manager) StartDrag() error {
	if m.windows == nil {
		return ErrNoWindows
	}
	m.touch()
	if err := m.windows.StartDrag(); err != nil {
		return fmt.Errorf("failed to start drag: %w", err)
	}
	return nil
}

// FollowMode keeps the window's cursor passthrough in line with the
// interaction mode: every mode notification on bus is applied with
// SetIgnoreCursor. The current mode is applied immediately.
func (m *Manager) FollowMode(bus *notify.Bus) (detach func()) {
	apply := func(md mode.Mode) {
		if m.windows == nil {
			return
		}
		if err := m.SetIgnoreCursor(md.IgnoresCursor()); err != nil {
			m.logger.Warn("cursor passthrough failed", zap.Stringer("mode", md), zap.Error(err))
		}
	}
	detach = bus.Subscribe(func(e notify.Event) {
		if md, ok := e.Payload.(mode.Mode); ok {
			apply(md)
		}
	}, notify.ModeChanged)
	apply(m.reg.Mode())
	return detach
}
