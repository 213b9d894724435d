// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// ErrNoWindows is returned by window operations when the manager runs
// without a window host (the chat REPL, for example).
var ErrNoWindows = errors.New("no window host attached")

// Window is a host window the manager can show and hide.
type Window interface {
	IsVisible() (bool, error)
	Show() error
	Hide() error
	Focus() error
}

// WindowManager is the host's windowing surface.
type WindowManager interface {
	// ChatWindow returns the chat window if it has been created.
	ChatWindow() (Window, bool)
	// CreateChatWindow creates the chat window. It is only called when
	// ChatWindow reports none.
	CreateChatWindow() (Window, error)
	// SetIgnoreCursor makes the pet window transparent to the pointer.
	SetIgnoreCursor(ignore bool) error
	// StartDrag begins moving the pet window with the pointer.
	StartDrag() error
}
