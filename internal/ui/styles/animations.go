// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"time"
)

// =============================================================================
// SPRITES
// =============================================================================

// Sprite is a looping ASCII animation.
type Sprite struct {
	Frames [][]string
	FPS    int
}

// Duration returns the duration for each frame.
func (s Sprite) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Frame returns frame i (wrapping) joined into one block.
func (s Sprite) Frame(i int) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return strings.Join(s.Frames[i%len(s.Frames)], "\n")
}

// SmallPet is used for sizes up to 100px.
var SmallPet = Sprite{
	Frames: [][]string{
		{"(=^.^=)"},
		{"(=^.^=)"},
		{"(=-.-=)"},
	},
	FPS: 2,
}

// MediumPet is used for sizes up to 200px.
var MediumPet = Sprite{
	Frames: [][]string{
		{
			" /\\_/\\ ",
			"( o.o )",
			" > ^ < ",
		},
		{
			" /\\_/\\ ",
			"( o.o )",
			" > ^ < ",
		},
		{
			" /\\_/\\ ",
			"( -.- )",
			" > ^ < ",
		},
	},
	FPS: 2,
}

// LargePet is used above 200px.
var LargePet = Sprite{
	Frames: [][]string{
		{
			"  /\\_____/\\  ",
			" /  o   o  \\ ",
			"( ==  ^  == )",
			" )         ( ",
			"(           )",
			" ( (  ) (  ) )",
		},
		{
			"  /\\_____/\\  ",
			" /  o   o  \\ ",
			"( ==  ^  == )",
			" )         ( ",
			"(           )",
			" ( (  ) (  ) )",
		},
		{
			"  /\\_____/\\  ",
			" /  -   -  \\ ",
			"( ==  ^  == )",
			" )         ( ",
			"(           )",
			" ( (  ) (  ) )",
		},
	},
	FPS: 2,
}

// ThinkingFrames cycle in the bubble while a reply is pending.
var ThinkingFrames = []string{"음.  ", "음.. ", "음...", "음.. "}

// SpriteFor picks the sprite for a character size in pixels.
func SpriteFor(size int) Sprite {
	switch {
	case size <= 100:
		return SmallPet
	case size <= 200:
		return MediumPet
	default:
		return LargePet
	}
}
