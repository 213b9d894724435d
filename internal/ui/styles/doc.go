// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the cody terminal UI.
//
// # Colors
//
// Every color is a lipgloss.AdaptiveColor so the pet looks right on both
// light and dark terminals. ModeColor maps interaction modes to badge
// colors: interactive is emerald, passthrough amber, ghost muted.
//
// # Sprites
//
// The pet is drawn from ASCII sprites. The configured character size in
// pixels picks one of three sprite sizes:
//
//	sprite := styles.SpriteFor(cfg.Pet.DefaultSize)
//	frame := sprite.Frame(tick)
package styles
