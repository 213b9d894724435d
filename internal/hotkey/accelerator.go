// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hotkey parses global-shortcut accelerators such as
// "CommandOrControl+Shift+D".
//
// Registering the shortcut with the OS belongs to the desktop shell; this
// package only validates the configured string and maps it onto the
// closest key a terminal can deliver.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultAccelerator cycles the interaction mode.
const DefaultAccelerator = "CommandOrControl+Shift+D"

// ErrEmpty is returned for a blank accelerator.
var ErrEmpty = errors.New("empty accelerator")

// Accelerator is a parsed shortcut.
type Accelerator struct {
	Ctrl  bool // Control, or Command on macOS when written CommandOrControl
	Cmd   bool // Command/Super only
	Alt   bool
	Shift bool
	Key   string // upper-case letter/digit or a named key such as "F5"
}

var modifierAliases = map[string]string{
	"commandorcontrol": "ctrl",
	"cmdorctrl":        "ctrl",
	"control":          "ctrl",
	"ctrl":             "ctrl",
	"command":          "cmd",
	"cmd":              "cmd",
	"super":            "cmd",
	"meta":             "cmd",
	"alt":              "alt",
	"option":           "alt",
	"shift":            "shift",
}

// Parse reads an accelerator of the form "Mod+Mod+Key". Modifier names are
// case-insensitive; exactly one non-modifier key is required.
func Parse(s string) (Accelerator, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Accelerator{}, ErrEmpty
	}

	var acc Accelerator
	parts := strings.Split(s, "+")
	for i, raw := range parts {
		part := strings.TrimSpace(raw)
		if part == "" {
			return Accelerator{}, fmt.Errorf("accelerator %q: empty segment", s)
		}

		if mod, ok := modifierAliases[strings.ToLower(part)]; ok {
			if i == len(parts)-1 {
				return Accelerator{}, fmt.Errorf("accelerator %q: missing key after modifiers", s)
			}
			switch mod {
			case "ctrl":
				acc.Ctrl = true
			case "cmd":
				acc.Cmd = true
			case "alt":
				acc.Alt = true
			case "shift":
				acc.Shift = true
			}
			continue
		}

		if i != len(parts)-1 {
			return Accelerator{}, fmt.Errorf("accelerator %q: key %q must come last", s, part)
		}
		acc.Key = strings.ToUpper(part)
	}
	return acc, nil
}

// String renders the accelerator in canonical order.
func (a Accelerator) String() string {
	var parts []string
	if a.Ctrl {
		parts = append(parts, "CommandOrControl")
	}
	if a.Cmd {
		parts = append(parts, "Super")
	}
	if a.Alt {
		parts = append(parts, "Alt")
	}
	if a.Shift {
		parts = append(parts, "Shift")
	}
	return strings.Join(append(parts, a.Key), "+")
}

// TerminalKey returns the Bubble Tea key string closest to the accelerator.
// Terminals cannot report Shift together with Control for letters, nor the
// Command key, so those modifiers are dropped when Control or Alt is held.
func (a Accelerator) TerminalKey() string {
	key := strings.ToLower(a.Key)
	switch {
	case a.Ctrl && a.Alt:
		return "ctrl+alt+" + key
	case a.Ctrl:
		return "ctrl+" + key
	case a.Alt:
		return "alt+" + key
	case a.Shift && len(a.Key) == 1:
		return a.Key
	default:
		return key
	}
}
