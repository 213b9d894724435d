// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the process-wide overlay state: the current
// interaction mode and the character size.
package state

import (
	"errors"
	"sync"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/notify"
)

// DefaultSize is the character edge length in pixels at startup.
const DefaultSize = 200

// SizePresets are the sizes offered by the tray menu. SetSize accepts any
// positive value.
var SizePresets = []int{100, 150, 200, 300, 400}

// ErrInvalidSize is returned by SetSize for non-positive sizes.
var ErrInvalidSize = errors.New("character size must be positive")

// Snapshot is a consistent-enough view of the register for display.
type Snapshot struct {
	Mode mode.Mode `json:"mode"`
	Size int       `json:"size"`
}

// =============================================================================
// REGISTER
// =============================================================================

// Register owns the interaction mode and character size. Each field has its
// own lock so a size change never waits on a mode change. Notifications are
// published after the lock is released and always carry the committed value.
type Register struct {
	modeMu sync.Mutex
	mode   mode.Mode

	sizeMu sync.Mutex
	size   int

	pub notify.Publisher
}

// NewRegister creates a register with the given initial values. A nil
// publisher drops notifications; invalid initial values fall back to the
// defaults.
func NewRegister(initial mode.Mode, size int, pub notify.Publisher) *Register {
	if pub == nil {
		pub = notify.Discard
	}
	if !initial.Valid() {
		initial = mode.Default
	}
	if size <= 0 {
		size = DefaultSize
	}
	return &Register{mode: initial, size: size, pub: pub}
}

// Mode returns the current interaction mode.
func (r *Register) Mode() mode.Mode {
	r.modeMu.Lock()
	defer r.modeMu.Unlock()
	return r.mode
}

// SetMode replaces the current mode and publishes ModeChanged. Setting the
// mode that is already active still notifies, matching a menu re-selection.
func (r *Register) SetMode(m mode.Mode) {
	r.modeMu.Lock()
	r.mode = m
	r.modeMu.Unlock()

	r.pub.Publish(notify.NewEvent(notify.ModeChanged, m))
}

// Advance moves to the next mode in the cycle and returns it. The read and
// the write happen under one lock so concurrent hotkey presses each advance
// exactly one step.
func (r *Register) Advance() mode.Mode {
	r.modeMu.Lock()
	next := mode.Next(r.mode)
	r.mode = next
	r.modeMu.Unlock()

	r.pub.Publish(notify.NewEvent(notify.ModeChanged, next))
	return next
}

// Size returns the character size in pixels.
func (r *Register) Size() int {
	r.sizeMu.Lock()
	defer r.sizeMu.Unlock()
	return r.size
}

// SetSize stores n and publishes SizeChanged once. Non-positive sizes are
// rejected and publish nothing.
func (r *Register) SetSize(n int) error {
	if n <= 0 {
		return ErrInvalidSize
	}

	r.sizeMu.Lock()
	r.size = n
	r.sizeMu.Unlock()

	r.pub.Publish(notify.NewEvent(notify.SizeChanged, n))
	return nil
}

// Snapshot reads both fields. The two reads are not atomic together.
func (r *Register) Snapshot() Snapshot {
	return Snapshot{Mode: r.Mode(), Size: r.Size()}
}
