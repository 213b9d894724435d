// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/hotkey"
	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/ollama"
	"github.com/jeranaias/cody/internal/transcript"
	"github.com/jeranaias/cody/internal/tray"
	"github.com/jeranaias/cody/internal/ui/styles"
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller is the part of session.Manager the pet drives.
type Controller interface {
	Mode() mode.Mode
	Size() int
	History() []transcript.Message
	ClearHistory()
	HandleHotkey() mode.Mode
	HandleMenu(id string) error
	ToggleChat() error
	CloseChat() error
	StartDrag() error
	SubmitChat(ctx context.Context, text string) ollama.Reply
}

// =============================================================================
// MESSAGES
// =============================================================================

type tickMsg time.Time

type replyMsg struct {
	reply ollama.Reply
}

type noticeExpiredMsg struct {
	id int
}

const (
	noticeDuration = 2 * time.Second
	bubbleWidth    = 28
	bubbleLines    = 3
	chatHeight     = 8
	maxChatWidth   = 64
)

// =============================================================================
// MODEL
// =============================================================================

// Options configures a Model.
type Options struct {
	Controller Controller
	Host       *Host
	Events     *Events // optional

	// Hotkey is mapped to the closest terminal key for mode cycling.
	Hotkey hotkey.Accelerator

	// MarkdownStyle is a glamour standard style ("dark", "light", "notty").
	MarkdownStyle string

	// X, Y place the pet on screen in cells.
	X, Y int

	// OnMove is called with the new position after the pet is moved.
	OnMove func(x, y int)

	Logger *zap.Logger
}

// Model is the Bubble Tea model for the pet.
type Model struct {
	ctrl   Controller
	host   *Host
	events *Events
	keys   KeyMap
	logger *zap.Logger
	onMove func(x, y int)

	// Dimensions
	width  int
	height int

	// Pet placement and animation
	x, y    int
	frame   int
	hovered bool

	// Drag tracking: anchor is the cell the drag began on, start the pet
	// position at that moment.
	anchorX, anchorY int
	startX, startY   int
	moved            bool

	// Speech bubble
	notice   string
	noticeID int
	lastErr  string
	pending  int

	// Tray menu overlay
	menuOpen   bool
	menuCursor int

	// Chat panel
	input    textinput.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	mdStyle  string
	mdWidth  int
	focused  bool
}

// New creates the pet model.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	acc := opts.Hotkey
	if acc.Key == "" {
		acc, _ = hotkey.Parse(hotkey.DefaultAccelerator)
	}
	style := opts.MarkdownStyle
	if style == "" {
		style = "dark"
	}

	input := textinput.New()
	input.Placeholder = "코디에게 말 걸기..."
	input.CharLimit = 2000
	input.Prompt = "> "

	return Model{
		ctrl:     opts.Controller,
		host:     opts.Host,
		events:   opts.Events,
		keys:     DefaultKeyMap(acc),
		logger:   logger.Named("pet"),
		onMove:   opts.OnMove,
		x:        max(opts.X, 0),
		y:        max(opts.Y, 0),
		input:    input,
		viewport: viewport.New(maxChatWidth, chatHeight),
		mdStyle:  style,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), textinput.Blink}
	if m.events != nil {
		cmds = append(cmds, m.events.Next())
	}
	return tea.Batch(cmds...)
}

func (m Model) tick() tea.Cmd {
	sprite := styles.SpriteFor(m.ctrl.Size())
	return tea.Tick(sprite.Duration(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Position returns the pet's position in cells.
func (m Model) Position() (x, y int) {
	return m.x, m.y
}

// MenuOpen reports whether the tray menu overlay is shown.
func (m Model) MenuOpen() bool {
	return m.menuOpen
}

// Pending reports how many chat turns are in flight.
func (m Model) Pending() int {
	return m.pending
}

// menuItems flattens the tray menu for cursor navigation.
func (m Model) menuItems() []tray.Item {
	return tray.Build(m.ctrl.Mode(), m.ctrl.Size()).Items()
}

// markdown renders an assistant reply for the chat panel, falling back to
// the raw text when rendering fails.
func (m *Model) markdown(content string, width int) string {
	if m.renderer == nil || m.mdWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.mdStyle),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			m.logger.Debug("markdown renderer unavailable", zap.Error(err))
			return content
		}
		m.renderer, m.mdWidth = r, width
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
