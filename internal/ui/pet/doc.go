// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pet provides the Bubble Tea terminal rendition of the desktop pet.
//
// The terminal stands in for the transparent overlay window: the pet sprite
// sits at a movable position, a speech bubble shows the latest reply, a
// badge shows the interaction mode and size, the tray menu opens as an
// overlay, and the chat window is a panel that can be toggled.
//
// # Key Types
//
//   - Model: Bubble Tea model driving the pet
//   - Host: terminal implementation of session.WindowManager
//   - Events: forwards bus notifications into the program
//
// # Usage
//
//	host := pet.NewHost()
//	events := pet.Listen(bus)
//	defer events.Close()
//
//	m := pet.New(pet.Options{Controller: mgr, Host: host, Events: events})
//	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
//	_, err := p.Run()
//
// # Input
//
// In interactive mode the pet takes clicks: a click opens the chat panel,
// a drag moves the pet, a right click opens the menu. Passthrough mode only
// reacts to the pointer hovering over the sprite. Ghost mode ignores the
// pointer entirely. The keyboard always works.
package pet
