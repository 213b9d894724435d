// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tray describes the tray menu: its fixed item ids, what each id
// does, and the labels shown for the current state.
package tray

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/state"
)

// Item ids sent by the native menu.
const (
	IDQuit       = "quit"
	sizePrefix   = "size_"
	modePrefix   = "mode_"
	checkMark    = " ✓"
	sizeMenuName = "캐릭터 크기"
	modeMenuName = "모드"
	quitLabel    = "종료"
)

// SizeID returns the item id for a size preset, e.g. "size_200".
func SizeID(size int) string { return sizePrefix + strconv.Itoa(size) }

// ModeID returns the item id for a mode, e.g. "mode_ghost".
func ModeID(m mode.Mode) string { return modePrefix + m.String() }

// =============================================================================
// ACTIONS
// =============================================================================

// ActionKind says what a menu item does.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionSetSize
	ActionSetMode
	ActionQuit
)

// Action is a parsed menu selection.
type Action struct {
	Kind ActionKind
	Size int
	Mode mode.Mode
}

// ParseItem maps a menu item id to its action. Ids outside the fixed set
// yield ActionNone and ok=false.
func ParseItem(id string) (Action, bool) {
	switch {
	case id == IDQuit:
		return Action{Kind: ActionQuit}, true

	case strings.HasPrefix(id, sizePrefix):
		n, err := strconv.Atoi(strings.TrimPrefix(id, sizePrefix))
		if err != nil || !isPreset(n) {
			return Action{}, false
		}
		return Action{Kind: ActionSetSize, Size: n}, true

	case strings.HasPrefix(id, modePrefix):
		name := strings.TrimPrefix(id, modePrefix)
		m, err := mode.Parse(name)
		if err != nil || m.String() != name {
			return Action{}, false
		}
		return Action{Kind: ActionSetMode, Mode: m}, true
	}
	return Action{}, false
}

func isPreset(n int) bool {
	for _, p := range state.SizePresets {
		if p == n {
			return true
		}
	}
	return false
}

// =============================================================================
// MENU MODEL
// =============================================================================

// Item is one clickable entry.
type Item struct {
	ID      string
	Label   string
	Checked bool
}

// Submenu groups items under a title.
type Submenu struct {
	Title string
	Items []Item
}

// Menu is the whole tray menu for a given state. The native shell renders
// it; the terminal UI draws it as a list.
type Menu struct {
	Size Submenu
	Mode Submenu
	Quit Item
}

// Build returns the menu with the active size and mode checked.
func Build(current mode.Mode, size int) Menu {
	menu := Menu{
		Size: Submenu{Title: sizeMenuName},
		Mode: Submenu{Title: modeMenuName},
		Quit: Item{ID: IDQuit, Label: quitLabel},
	}

	for _, p := range state.SizePresets {
		item := Item{ID: SizeID(p), Label: fmt.Sprintf("%dpx", p), Checked: p == size}
		if item.Checked {
			item.Label += checkMark
		}
		menu.Size.Items = append(menu.Size.Items, item)
	}

	for _, m := range mode.All {
		item := Item{ID: ModeID(m), Label: titleCase(m.String()), Checked: m == current}
		if item.Checked {
			item.Label += checkMark
		}
		menu.Mode.Items = append(menu.Mode.Items, item)
	}

	return menu
}

// Items flattens the menu in display order.
func (m Menu) Items() []Item {
	out := make([]Item, 0, len(m.Size.Items)+len(m.Mode.Items)+1)
	out = append(out, m.Size.Items...)
	out = append(out, m.Mode.Items...)
	return append(out, m.Quit)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
