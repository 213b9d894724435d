// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mode defines the interaction modes of the pet overlay window.
//
// Exactly one mode is active at a time. The hotkey cycles through them in a
// fixed order (see Next); the tray menu selects one directly.
package mode

import (
	"fmt"
	"strings"
)

// Mode is how the overlay window treats mouse input.
type Mode int

const (
	// Interactive takes every click and drag (the startup default).
	Interactive Mode = iota
	// Passthrough lets clicks fall through except over the character itself.
	Passthrough
	// Ghost ignores the cursor entirely.
	Ghost
)

// Default is the mode the overlay starts in.
const Default = Interactive

// All lists the modes in cycle order.
var All = []Mode{Interactive, Passthrough, Ghost}

var names = map[Mode]string{
	Interactive: "interactive",
	Passthrough: "passthrough",
	Ghost:       "ghost",
}

// Next returns the mode the hotkey advances to from m.
// Interactive -> Passthrough -> Ghost -> Interactive.
func Next(m Mode) Mode {
	switch m {
	case Interactive:
		return Passthrough
	case Passthrough:
		return Ghost
	case Ghost:
		return Interactive
	default:
		return Default
	}
}

// String returns the lowercase wire name of the mode.
func (m Mode) String() string {
	if n, ok := names[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	_, ok := names[m]
	return ok
}

// IgnoresCursor reports whether the window should stop receiving mouse
// events in this mode. Passthrough still forwards hover so the front end
// can re-enable input over opaque character pixels.
func (m Mode) IgnoresCursor() bool {
	return m != Interactive
}

// ForwardsHover reports whether ignored events are still forwarded for
// hit testing.
func (m Mode) ForwardsHover() bool {
	return m == Passthrough
}

// Parse converts a wire name back into a Mode. Matching is case-insensitive.
func Parse(s string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for m, n := range names {
		if n == key {
			return m, nil
		}
	}
	return Default, fmt.Errorf("unknown interaction mode %q", s)
}

// MarshalText implements encoding.TextMarshaler so modes serialize by name
// in JSON and TOML.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid interaction mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
