// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/cody/internal/mode"
)

// =============================================================================
// PET
// =============================================================================

// PetStyle renders the character. Ghost mode fades it out.
func PetStyle(m mode.Mode) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(Peach)
	if m == mode.Ghost {
		s = s.Foreground(TextMuted).Faint(true)
	}
	return s
}

// BubbleStyle is the speech bubble above the pet.
var BubbleStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Purple).
	Foreground(TextPrimary).
	Padding(0, 1)

// ErrorBubbleStyle is the speech bubble for failed replies.
var ErrorBubbleStyle = BubbleStyle.
	BorderForeground(Rose).
	Foreground(Rose)

// BadgeStyle renders the mode and size badge.
func BadgeStyle(m mode.Mode) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(ModeColor(m)).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)
}

// =============================================================================
// TRAY MENU
// =============================================================================

var (
	// MenuStyle frames the tray menu overlay.
	MenuStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Overlay).
			Padding(0, 1)

	// MenuTitleStyle labels a submenu.
	MenuTitleStyle = lipgloss.NewStyle().Foreground(TextMuted).Bold(true)

	// MenuItemStyle is an unselected entry.
	MenuItemStyle = lipgloss.NewStyle().Foreground(TextPrimary).PaddingLeft(2)

	// MenuCursorStyle is the entry under the cursor.
	MenuCursorStyle = lipgloss.NewStyle().Foreground(Purple).Bold(true).PaddingLeft(2)
)

// =============================================================================
// CHAT PANEL
// =============================================================================

var (
	// ChatPanelStyle frames the chat window.
	ChatPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan).
			Padding(0, 1)

	// UserLineStyle prefixes the user's messages.
	UserLineStyle = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	// PetLineStyle prefixes the pet's messages.
	PetLineStyle = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	// ErrorLineStyle renders failed turns.
	ErrorLineStyle = lipgloss.NewStyle().Foreground(Rose)

	// HintStyle renders key hints.
	HintStyle = lipgloss.NewStyle().Foreground(TextMuted)
)
