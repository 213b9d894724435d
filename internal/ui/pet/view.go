// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/transcript"
	"github.com/jeranaias/cody/internal/tray"
	"github.com/jeranaias/cody/internal/ui/styles"
	"github.com/jeranaias/cody/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(strings.Repeat("\n", m.y))
	row := lipgloss.JoinHorizontal(lipgloss.Top, m.viewPet(), "  ", m.viewBubble())
	b.WriteString(indent(row, m.x))

	if m.menuOpen {
		b.WriteString("\n")
		b.WriteString(indent(m.viewMenu(), m.x))
	}

	if m.host.ChatVisible() {
		b.WriteString("\n\n")
		b.WriteString(m.viewChat())
	}

	b.WriteString("\n")
	b.WriteString(m.viewHints())
	return b.String()
}

func (m Model) viewPet() string {
	md := m.ctrl.Mode()
	size := m.ctrl.Size()
	sprite := styles.SpriteFor(size)

	frame := m.frame
	if m.hovered || m.host.Dragging() {
		// eyes open while someone is paying attention
		frame = 0
	}
	body := styles.PetStyle(md).Render(sprite.Frame(frame))
	badge := styles.BadgeStyle(md).Render(strings.ToUpper(md.String())) +
		" " + styles.HintStyle.Render(fmt.Sprintf("%dpx", size))

	return lipgloss.JoinVertical(lipgloss.Left, body, badge)
}

func (m Model) viewBubble() string {
	style := styles.BubbleStyle
	var text string

	switch {
	case m.pending > 0:
		text = styles.ThinkingFrames[m.frame%len(styles.ThinkingFrames)]
	case m.notice != "":
		text = m.notice
	case m.lastErr != "":
		text = m.lastErr
		style = styles.ErrorBubbleStyle
	default:
		text = lastReply(m.ctrl.History())
	}
	if text == "" {
		return ""
	}
	return style.Render(strings.Join(bubbleLinesFor(text), "\n"))
}

// bubbleLinesFor wraps text to the bubble and cuts it to bubbleLines.
func bubbleLinesFor(text string) []string {
	lines := util.WrapWidth(strings.TrimSpace(text), bubbleWidth)
	if len(lines) > bubbleLines {
		lines = lines[:bubbleLines]
		lines[bubbleLines-1] = util.Ellipsize(lines[bubbleLines-1], bubbleWidth)
	}
	return lines
}

func lastReply(history []transcript.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == transcript.RoleAssistant {
			return history[i].Content
		}
	}
	return ""
}

func (m Model) viewMenu() string {
	menu := tray.Build(m.ctrl.Mode(), m.ctrl.Size())

	var lines []string
	i := 0
	section := func(title string, items []tray.Item) {
		if title != "" {
			lines = append(lines, styles.MenuTitleStyle.Render(title))
		}
		for _, item := range items {
			style := styles.MenuItemStyle
			if i == m.menuCursor {
				style = styles.MenuCursorStyle
			}
			lines = append(lines, style.Render(item.Label))
			i++
		}
	}
	section(menu.Size.Title, menu.Size.Items)
	section(menu.Mode.Title, menu.Mode.Items)
	section("", []tray.Item{menu.Quit})

	return styles.MenuStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) viewChat() string {
	input := m.input.View()
	if !m.focused {
		input = styles.HintStyle.Render(m.input.Placeholder)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), "", input)
	return styles.ChatPanelStyle.Render(body)
}

func (m Model) viewHints() string {
	var hints []key.Binding
	switch {
	case m.menuOpen:
		hints = []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Close}
	case m.focused:
		hints = []key.Binding{m.keys.Submit, m.keys.Clear, m.keys.Close, m.keys.CycleMode}
	default:
		hints = []key.Binding{m.keys.CycleMode, m.keys.Menu, m.keys.Chat, m.keys.Quit}
	}

	parts := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		help := h.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	if m.ctrl.Mode() != mode.Interactive {
		parts = append(parts, "mouse off")
	}
	return styles.HintStyle.Render(strings.Join(parts, " · "))
}

// indent shifts every line of s right by n cells.
func indent(s string, n int) string {
	if n <= 0 {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}
