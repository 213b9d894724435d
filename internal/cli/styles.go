// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/cody/internal/ui/styles"
)

// init configures the lipgloss color profile from terminal capabilities,
// so piped output stays free of escape codes.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Peach).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary)

	// labelStyle pads field names so values line up.
	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Width(12)

	valueStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	successStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)

	promptStyle = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	petStyle    = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
)

// field renders an aligned "label value" line.
func field(label, value string) string {
	return "  " + labelStyle.Render(label) + value
}
