// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pet

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/cody/internal/mode"
	"github.com/jeranaias/cody/internal/notify"
)

// eventBuffer is how many notifications may queue before new ones are
// dropped. The model re-reads mode and size on every render, so a dropped
// notification only costs an on-screen notice.
const eventBuffer = 32

// ModeChangedMsg is delivered when the interaction mode changes.
type ModeChangedMsg struct {
	Mode mode.Mode
}

// SizeChangedMsg is delivered when the character size changes.
type SizeChangedMsg struct {
	Size int
}

// Events forwards bus notifications into a Bubble Tea program through the
// command returned by Next. Publishing never blocks, even when the program
// is busy in Update on the publishing goroutine.
type Events struct {
	mu     sync.Mutex
	ch     chan notify.Event
	closed bool
	detach func()
}

// Listen subscribes to mode and size notifications on bus.
func Listen(bus *notify.Bus) *Events {
	e := &Events{ch: make(chan notify.Event, eventBuffer)}
	e.detach = bus.Subscribe(e.push, notify.ModeChanged, notify.SizeChanged)
	return e
}

func (e *Events) push(ev notify.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.ch <- ev:
	default:
	}
}

// Next returns a command that waits for the next notification. The
// command yields nil once Close has been called.
func (e *Events) Next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-e.ch
		if !ok {
			return nil
		}
		return toMsg(ev)
	}
}

// Close unsubscribes and releases any waiting command.
func (e *Events) Close() {
	e.detach()
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		close(e.ch)
	}
}

func toMsg(ev notify.Event) tea.Msg {
	switch p := ev.Payload.(type) {
	case mode.Mode:
		return ModeChangedMsg{Mode: p}
	case int:
		return SizeChangedMsg{Size: p}
	}
	return nil
}
