// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/cody/internal/hotkey"
)

// KeyMap defines the keyboard bindings for the pet.
type KeyMap struct {
	CycleMode key.Binding
	Menu      key.Binding
	Chat      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Select    key.Binding
	Close     key.Binding
	Submit    key.Binding
	Clear     key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings with the mode hotkey mapped
// from acc.
func DefaultKeyMap(acc hotkey.Accelerator) KeyMap {
	cycle := acc.TerminalKey()
	return KeyMap{
		CycleMode: key.NewBinding(
			key.WithKeys(cycle),
			key.WithHelp(cycle, "cycle mode"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "menu"),
		),
		Chat: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "chat"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear chat"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
