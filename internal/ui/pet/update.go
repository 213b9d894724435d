// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/transcript"
	"github.com/jeranaias/cody/internal/tray"
	"github.com/jeranaias/cody/internal/ui/styles"
	"github.com/jeranaias/cody/internal/util"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resizeChat()
		m.clamp()
		m.refreshChat()
		return m, nil

	case tickMsg:
		m.frame++
		if m.pending > 0 {
			// the user's message lands in history once the turn starts
			m.refreshChat()
		}
		return m, m.tick()

	case ModeChangedMsg:
		m.hovered = false
		return m, tea.Batch(m.setNotice(modeNotice(msg.Mode)), m.nextEvent())

	case SizeChangedMsg:
		m.clamp()
		return m, tea.Batch(m.setNotice(fmt.Sprintf("%dpx!", msg.Size)), m.nextEvent())

	case noticeExpiredMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil

	case replyMsg:
		m.pending--
		if msg.reply.Success {
			m.lastErr = ""
		} else {
			m.lastErr = msg.reply.Error
		}
		m.refreshChat()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focused {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) nextEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return m.events.Next()
}

func modeNotice(md mode.Mode) string {
	switch md {
	case mode.Passthrough:
		return "통과 모드! 마우스는 지나가~"
	case mode.Ghost:
		return "유령 모드... 👻"
	default:
		return "다시 놀자! 헤헤"
	}
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeID++
	id := m.noticeID
	m.notice = text
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// =============================================================================
// KEYBOARD
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if key.Matches(msg, m.keys.CycleMode) {
		m.ctrl.HandleHotkey()
		return m, nil
	}
	if m.menuOpen {
		return m.handleMenuKey(msg)
	}
	if m.focused {
		return m.handleChatKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Menu):
		m.openMenu()
	case key.Matches(msg, m.keys.Chat):
		return m.toggleChat()
	case key.Matches(msg, m.keys.Close):
		if m.host.ChatVisible() {
			return m.closeChat()
		}
	case key.Matches(msg, m.keys.Up):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.move(1, 0)
	}
	return m, nil
}

func (m Model) handleMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.menuItems()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.menuCursor = (m.menuCursor - 1 + len(items)) % len(items)
	case key.Matches(msg, m.keys.Down):
		m.menuCursor = (m.menuCursor + 1) % len(items)
	case key.Matches(msg, m.keys.Select):
		m.menuOpen = false
		return m.selectMenu(items[m.menuCursor].ID)
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Menu), key.Matches(msg, m.keys.Quit):
		m.menuOpen = false
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		return m.closeChat()

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.ClearHistory()
		m.lastErr = ""
		m.refreshChat()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.pending++
		return m, m.submit(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit runs the chat turn off the update loop.
func (m Model) submit(text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return replyMsg{reply: ctrl.SubmitChat(context.Background(), text)}
	}
}

// =============================================================================
// MENU AND CHAT ACTIONS
// =============================================================================

func (m *Model) openMenu() {
	m.menuOpen = true
	m.menuCursor = 0
	for i, item := range m.menuItems() {
		if item.Checked {
			m.menuCursor = i
			break
		}
	}
}

func (m Model) selectMenu(id string) (tea.Model, tea.Cmd) {
	if id == tray.IDQuit {
		return m.quit()
	}
	if err := m.ctrl.HandleMenu(id); err != nil {
		m.logger.Warn("menu action failed", zap.String("id", id), zap.Error(err))
		m.lastErr = err.Error()
	}
	m.clamp()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if err := m.ctrl.HandleMenu(tray.IDQuit); err != nil {
		m.logger.Warn("quit handler failed", zap.Error(err))
	}
	return m, tea.Quit
}

func (m Model) toggleChat() (tea.Model, tea.Cmd) {
	if err := m.ctrl.ToggleChat(); err != nil {
		m.logger.Warn("toggle chat failed", zap.Error(err))
		m.lastErr = err.Error()
		return m, nil
	}
	return m, m.syncFocus()
}

func (m Model) closeChat() (tea.Model, tea.Cmd) {
	if err := m.ctrl.CloseChat(); err != nil {
		m.logger.Warn("close chat failed", zap.Error(err))
		m.lastErr = err.Error()
	}
	return m, m.syncFocus()
}

// syncFocus aligns the input focus with the host's chat panel state.
func (m *Model) syncFocus() tea.Cmd {
	var cmd tea.Cmd
	switch {
	case !m.host.ChatVisible():
		m.focused = false
		m.input.Blur()
	case m.host.TakeFocus():
		m.focused = true
		cmd = m.input.Focus()
		if cmd == nil {
			cmd = textinput.Blink
		}
	}
	m.refreshChat()
	return cmd
}

// =============================================================================
// MOUSE
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.host.IgnoresCursor() {
		if m.ctrl.Mode().ForwardsHover() && msg.Type == tea.MouseMotion {
			m.hovered = m.hit(msg.X, msg.Y)
		}
		return m, nil
	}

	switch msg.Type {
	case tea.MouseLeft:
		if m.host.Dragging() {
			m.dragTo(msg.X, msg.Y)
			return m, nil
		}
		if !m.hit(msg.X, msg.Y) {
			return m, nil
		}
		if err := m.ctrl.StartDrag(); err != nil {
			m.lastErr = err.Error()
			return m, nil
		}
		m.anchorX, m.anchorY = msg.X, msg.Y
		m.startX, m.startY = m.x, m.y
		m.moved = false

	case tea.MouseMotion:
		if m.host.Dragging() {
			m.dragTo(msg.X, msg.Y)
		} else {
			m.hovered = m.hit(msg.X, msg.Y)
		}

	case tea.MouseRelease:
		if !m.host.Dragging() {
			return m, nil
		}
		m.host.EndDrag()
		if m.moved {
			m.notifyMove()
			return m, nil
		}
		// a click without movement
		return m.toggleChat()

	case tea.MouseRight:
		if m.hit(msg.X, msg.Y) {
			if m.menuOpen {
				m.menuOpen = false
			} else {
				m.openMenu()
			}
		}
	}
	return m, nil
}

func (m *Model) dragTo(x, y int) {
	px, py := m.x, m.y
	m.x = m.startX + (x - m.anchorX)
	m.y = m.startY + (y - m.anchorY)
	m.clamp()
	if m.x != px || m.y != py {
		m.moved = true
	}
}

func (m *Model) move(dx, dy int) {
	px, py := m.x, m.y
	m.x += dx
	m.y += dy
	m.clamp()
	if m.x != px || m.y != py {
		m.notifyMove()
	}
}

func (m *Model) notifyMove() {
	if m.onMove != nil {
		m.onMove(m.x, m.y)
	}
}

// =============================================================================
// GEOMETRY
// =============================================================================

// spriteSize returns the current sprite's width and height in cells.
func (m Model) spriteSize() (w, h int) {
	sprite := styles.SpriteFor(m.ctrl.Size())
	if len(sprite.Frames) == 0 {
		return 0, 0
	}
	for _, line := range sprite.Frames[0] {
		w = max(w, util.StringWidth(line))
	}
	return w, len(sprite.Frames[0])
}

// hit reports whether cell (x, y) lies on the sprite.
func (m Model) hit(x, y int) bool {
	w, h := m.spriteSize()
	return x >= m.x && x < m.x+w && y >= m.y && y < m.y+h
}

// clamp keeps the sprite and its badge on screen.
func (m *Model) clamp() {
	w, h := m.spriteSize()
	if m.width > 0 {
		m.x = min(m.x, m.width-w)
	}
	if m.height > 0 {
		m.y = min(m.y, m.height-h-1)
	}
	m.x = max(m.x, 0)
	m.y = max(m.y, 0)
}

func (m *Model) resizeChat() {
	w := maxChatWidth
	if m.width > 0 {
		w = min(w, m.width-4)
	}
	w = max(w, 20)
	m.viewport.Width = w
	m.viewport.Height = chatHeight
	m.input.Width = w - 4
}

// refreshChat re-renders the conversation into the chat viewport.
func (m *Model) refreshChat() {
	if !m.host.ChatVisible() {
		return
	}
	width := max(m.viewport.Width-2, 10)

	var b strings.Builder
	for _, msg := range m.ctrl.History() {
		switch msg.Role {
		case transcript.RoleUser:
			b.WriteString(styles.UserLineStyle.Render("나") + " " + msg.Content + "\n")
		case transcript.RoleAssistant:
			b.WriteString(styles.PetLineStyle.Render("코디") + "\n")
			b.WriteString(strings.Trim(m.markdown(msg.Content, width), "\n") + "\n")
		}
	}
	if m.pending > 0 {
		b.WriteString(styles.HintStyle.Render("코디가 생각 중...") + "\n")
	}
	if m.lastErr != "" {
		b.WriteString(styles.ErrorLineStyle.Render("! "+m.lastErr) + "\n")
	}

	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))
	m.viewport.GotoBottom()
}
