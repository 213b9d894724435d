// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/notify"
	"github.com/jeranaias/cody/internal/ollama"
	"github.com/jeranaias/cody/internal/session"
	"github.com/jeranaias/cody/internal/state"
	"github.com/jeranaias/cody/internal/transcript"
	"github.com/jeranaias/cody/internal/util"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type cannedInference struct {
	reply ollama.Reply
}

func (c cannedInference) Send(context.Context, []transcript.Message) ollama.Reply { return c.reply }
func (cannedInference) SetModel(string)                                          {}

type fixture struct {
	model *Model
	mgr   *session.Manager
	host  *Host
	bus   *notify.Bus
	quits *atomic.Int32
	moves [][2]int
}

func newFixture(t *testing.T, reply ollama.Reply) *fixture {
	t.Helper()
	f := &fixture{
		host:  NewHost(),
		bus:   notify.NewBus(nil),
		quits: &atomic.Int32{},
	}
	reg := state.NewRegister(mode.Interactive, state.DefaultSize, f.bus)
	mgr, err := session.NewManager(session.Options{
		Register:   reg,
		Transcript: transcript.NewStore(),
		Client:     cannedInference{reply: reply},
		Windows:    f.host,
		Quit:       func() { f.quits.Add(1) },
	})
	require.NoError(t, err)
	t.Cleanup(mgr.FollowMode(f.bus))
	f.mgr = mgr

	m := New(Options{
		Controller: mgr,
		Host:       f.host,
		OnMove:     func(x, y int) { f.moves = append(f.moves, [2]int{x, y}) },
	})
	f.model = &m
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	next, cmd := f.model.Update(msg)
	m := next.(Model)
	f.model = &m
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mouse(x, y int, typ tea.MouseEventType) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Type: typ}
}

// =============================================================================
// HOST
// =============================================================================

func TestHost_ToggleThroughManager(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	assert.False(t, f.host.ChatVisible())
	require.NoError(t, f.mgr.ToggleChat())
	assert.True(t, f.host.ChatVisible())
	assert.True(t, f.host.TakeFocus())
	assert.False(t, f.host.TakeFocus(), "focus request is consumed")

	require.NoError(t, f.mgr.ToggleChat())
	assert.False(t, f.host.ChatVisible())

	require.NoError(t, f.mgr.ToggleChat())
	assert.True(t, f.host.ChatVisible())
	assert.True(t, f.host.TakeFocus())
}

func TestHost_CursorFollowsMode(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	assert.False(t, f.host.IgnoresCursor())
	f.mgr.HandleHotkey()
	assert.True(t, f.host.IgnoresCursor(), "passthrough")
	f.mgr.HandleHotkey()
	assert.True(t, f.host.IgnoresCursor(), "ghost")
	f.mgr.HandleHotkey()
	assert.False(t, f.host.IgnoresCursor(), "interactive")
}

func TestHost_IgnoringCursorEndsDrag(t *testing.T) {
	h := NewHost()
	require.NoError(t, h.StartDrag())
	assert.True(t, h.Dragging())
	require.NoError(t, h.SetIgnoreCursor(true))
	assert.False(t, h.Dragging())
}

// =============================================================================
// EVENTS
// =============================================================================

func TestEvents_Forwarding(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := notify.NewBus(nil)
	events := Listen(bus)

	bus.Publish(notify.NewEvent(notify.ModeChanged, mode.Ghost))
	bus.Publish(notify.NewEvent(notify.SizeChanged, 300))

	assert.Equal(t, ModeChangedMsg{Mode: mode.Ghost}, events.Next()())
	assert.Equal(t, SizeChangedMsg{Size: 300}, events.Next()())

	events.Close()
	events.Close()
	assert.Nil(t, events.Next()())
	assert.Equal(t, 0, bus.SubscriberCount())

	// publishing after close is harmless
	bus.Publish(notify.NewEvent(notify.ModeChanged, mode.Interactive))
}

func TestEvents_NeverBlocks(t *testing.T) {
	bus := notify.NewBus(nil)
	events := Listen(bus)
	defer events.Close()

	for i := 0; i < eventBuffer*3; i++ {
		bus.Publish(notify.NewEvent(notify.SizeChanged, 100+i))
	}
	assert.Equal(t, SizeChangedMsg{Size: 100}, events.Next()())
}

// =============================================================================
// KEYBOARD
// =============================================================================

func TestModel_HotkeyCyclesMode(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, mode.Passthrough, f.mgr.Mode())
	f.send(tea.KeyMsg{Type: tea.KeyCtrlD})
	assert.Equal(t, mode.Ghost, f.mgr.Mode())

	assert.Contains(t, f.model.View(), "GHOST")
}

func TestModel_MenuSelectsSize(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(runes("m"))
	require.True(t, f.model.MenuOpen())
	assert.Equal(t, 2, f.model.menuCursor, "cursor starts on the checked size")
	assert.Contains(t, f.model.View(), "200px ✓")

	f.send(tea.KeyMsg{Type: tea.KeyDown})
	f.send(tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, f.model.MenuOpen())
	assert.Equal(t, 300, f.mgr.Size())
}

func TestModel_MenuSelectsMode(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(runes("m"))
	// sizes 0-4, modes 5-7
	for f.model.menuCursor != 7 {
		f.send(tea.KeyMsg{Type: tea.KeyDown})
	}
	f.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, mode.Ghost, f.mgr.Mode())
}

func TestModel_MenuQuit(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(runes("m"))
	for f.model.menuCursor != 8 {
		f.send(tea.KeyMsg{Type: tea.KeyDown})
	}
	cmd := f.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, int32(1), f.quits.Load())
}

func TestModel_QuitKey(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	cmd := f.send(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, int32(1), f.quits.Load())
}

func TestModel_ArrowsMovePet(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(tea.KeyMsg{Type: tea.KeyRight})
	f.send(tea.KeyMsg{Type: tea.KeyDown})
	f.send(tea.KeyMsg{Type: tea.KeyLeft})
	f.send(tea.KeyMsg{Type: tea.KeyLeft}) // clamped at 0, no callback

	x, y := f.model.Position()
	assert.Equal(t, 0, x)
	assert.Equal(t, 1, y)
	assert.Equal(t, [][2]int{{1, 0}, {1, 1}, {0, 1}}, f.moves)
}

// =============================================================================
// CHAT PANEL
// =============================================================================

func TestModel_ChatRoundTrip(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("헤헤 안녕!"))

	f.send(runes("c"))
	require.True(t, f.host.ChatVisible())
	require.True(t, f.model.focused)

	f.send(runes("안녕"))
	cmd := f.send(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, 1, f.model.Pending())
	assert.Contains(t, f.model.View(), "음")

	f.send(cmd())
	assert.Equal(t, 0, f.model.Pending())

	history := f.mgr.History()
	require.Len(t, history, 2)
	assert.Equal(t, "안녕", history[0].Content)
	assert.Contains(t, f.model.View(), "헤헤 안녕!")

	f.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.host.ChatVisible())
	assert.False(t, f.model.focused)
}

func TestModel_ChatFailureShowsError(t *testing.T) {
	f := newFixture(t, ollama.Reply{Success: false, Error: "Failed to connect to Ollama: refused"})

	f.send(runes("c"))
	f.send(runes("hi"))
	cmd := f.send(tea.KeyMsg{Type: tea.KeyEnter})
	f.send(cmd())

	assert.Equal(t, "Failed to connect to Ollama: refused", f.model.lastErr)
	assert.Contains(t, f.model.View(), "Failed to connect")
	assert.Len(t, f.mgr.History(), 1)

	f.send(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, f.mgr.History())
	assert.Empty(t, f.model.lastErr)
}

func TestModel_EmptySubmitIgnored(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("x"))

	f.send(runes("c"))
	f.send(runes("   "))
	cmd := f.send(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, f.model.Pending())
}

// =============================================================================
// MOUSE
// =============================================================================

func TestModel_ClickOpensChat(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(mouse(2, 1, tea.MouseLeft))
	f.send(mouse(2, 1, tea.MouseRelease))
	assert.True(t, f.host.ChatVisible())
	assert.Empty(t, f.moves)
}

func TestModel_DragMovesPet(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(mouse(2, 1, tea.MouseLeft))
	assert.True(t, f.host.Dragging())
	f.send(mouse(7, 3, tea.MouseMotion))
	f.send(mouse(7, 3, tea.MouseRelease))

	x, y := f.model.Position()
	assert.Equal(t, 5, x)
	assert.Equal(t, 2, y)
	assert.Equal(t, [][2]int{{5, 2}}, f.moves)
	assert.False(t, f.host.Dragging())
	assert.False(t, f.host.ChatVisible(), "a drag is not a click")
}

func TestModel_ClickOffPetIgnored(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(mouse(40, 20, tea.MouseLeft))
	f.send(mouse(40, 20, tea.MouseRelease))
	assert.False(t, f.host.Dragging())
	assert.False(t, f.host.ChatVisible())
}

func TestModel_RightClickOpensMenu(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	f.send(mouse(1, 0, tea.MouseRight))
	assert.True(t, f.model.MenuOpen())
	f.send(mouse(1, 0, tea.MouseRight))
	assert.False(t, f.model.MenuOpen())
}

func TestModel_GhostIgnoresPointer(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))
	f.mgr.SetMode(mode.Ghost)

	f.send(mouse(2, 1, tea.MouseLeft))
	f.send(mouse(2, 1, tea.MouseRelease))
	f.send(mouse(2, 1, tea.MouseMotion))
	assert.False(t, f.host.ChatVisible())
	assert.False(t, f.model.hovered)
}

func TestModel_PassthroughForwardsHover(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))
	f.mgr.SetMode(mode.Passthrough)

	f.send(mouse(2, 1, tea.MouseLeft))
	assert.False(t, f.host.Dragging(), "clicks pass through")

	f.send(mouse(2, 1, tea.MouseMotion))
	assert.True(t, f.model.hovered)
	f.send(mouse(30, 10, tea.MouseMotion))
	assert.False(t, f.model.hovered)
}

// =============================================================================
// LAYOUT
// =============================================================================

func TestModel_WindowSizeClamps(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))
	m := New(Options{Controller: f.mgr, Host: f.host, X: 500, Y: 500})
	f.model = &m

	f.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	x, y := f.model.Position()
	assert.Equal(t, 80-7, x)
	assert.Equal(t, 24-3-1, y)
}

func TestModel_NoticeExpires(t *testing.T) {
	f := newFixture(t, ollama.Succeeded("hi"))

	cmd := f.send(ModeChangedMsg{Mode: mode.Ghost})
	require.NotNil(t, cmd)
	assert.NotEmpty(t, f.model.notice)

	f.send(noticeExpiredMsg{id: f.model.noticeID - 1})
	assert.NotEmpty(t, f.model.notice, "stale expiry is ignored")
	f.send(noticeExpiredMsg{id: f.model.noticeID})
	assert.Empty(t, f.model.notice)
}

func TestBubbleLinesFor(t *testing.T) {
	long := strings.Repeat("코디는 개발자의 데스크톱 펫이야 ", 10)
	lines := bubbleLinesFor(long)
	require.Len(t, lines, bubbleLines)
	assert.True(t, strings.HasSuffix(lines[bubbleLines-1], util.Ellipsis))
	for _, l := range lines {
		assert.LessOrEqual(t, util.StringWidth(l), bubbleWidth)
	}

	assert.Equal(t, []string{"헤헤"}, bubbleLinesFor("  헤헤  "))
}
