// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"sync"

	"github.com/jeranaias/cody/internal/session"
)

// Host is the terminal's window surface. The chat "window" is a panel in
// the same screen; cursor passthrough and dragging are flags the Model
// consults when it handles mouse input. Safe for concurrent use.
type Host struct {
	mu           sync.Mutex
	chatCreated  bool
	chatVisible  bool
	focusPending bool
	ignoreCursor bool
	dragging     bool
}

// NewHost creates a host with no chat panel.
func NewHost() *Host {
	return &Host{}
}

var _ session.WindowManager = (*Host)(nil)

// ChatWindow implements session.WindowManager.
func (h *Host) ChatWindow() (session.Window, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.chatCreated {
		return nil, false
	}
	return chatPanel{h}, true
}

// CreateChatWindow implements session.WindowManager.
func (h *Host) CreateChatWindow() (session.Window, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.chatCreated = true
	h.chatVisible = true
	return chatPanel{h}, nil
}

// SetIgnoreCursor implements session.WindowManager.
func (h *Host) SetIgnoreCursor(ignore bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ignoreCursor = ignore
	if ignore {
		h.dragging = false
	}
	return nil
}

// StartDrag implements session.WindowManager.
func (h *Host) StartDrag() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dragging = true
	return nil
}

// EndDrag stops a drag started with StartDrag.
func (h *Host) EndDrag() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dragging = false
}

// Dragging reports whether a drag is in progress.
func (h *Host) Dragging() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dragging
}

// IgnoresCursor reports whether pointer input should be dropped.
func (h *Host) IgnoresCursor() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ignoreCursor
}

// ChatVisible reports whether the chat panel is shown.
func (h *Host) ChatVisible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.chatCreated && h.chatVisible
}

// TakeFocus reports and clears a pending focus request for the chat panel.
func (h *Host) TakeFocus() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.focusPending
	h.focusPending = false
	return f
}

type chatPanel struct{ h *Host }

func (c chatPanel) IsVisible() (bool, error) {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	return c.h.chatVisible, nil
}

func (c chatPanel) Show() error {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	c.h.chatVisible = true
	return nil
}

func (c chatPanel) Hide() error {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	c.h.chatVisible = false
	c.h.focusPending = false
	return nil
}

func (c chatPanel) Focus() error {
	c.h.mu.Lock()
	defer c.h.mu.Unlock()
	c.h.focusPending = true
	return nil
}
