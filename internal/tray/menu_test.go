// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/cody/internal/mode"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		id   string
		want Action
		ok   bool
	}{
		{"size_100", Action{Kind: ActionSetSize, Size: 100}, true},
		{"size_150", Action{Kind: ActionSetSize, Size: 150}, true},
		{"size_200", Action{Kind: ActionSetSize, Size: 200}, true},
		{"size_300", Action{Kind: ActionSetSize, Size: 300}, true},
		{"size_400", Action{Kind: ActionSetSize, Size: 400}, true},
		{"mode_interactive", Action{Kind: ActionSetMode, Mode: mode.Interactive}, true},
		{"mode_passthrough", Action{Kind: ActionSetMode, Mode: mode.Passthrough}, true},
		{"mode_ghost", Action{Kind: ActionSetMode, Mode: mode.Ghost}, true},
		{"quit", Action{Kind: ActionQuit}, true},

		{"size_250", Action{}, false},
		{"size_abc", Action{}, false},
		{"mode_Ghost", Action{}, false},
		{"mode_", Action{}, false},
		{"", Action{}, false},
		{"about", Action{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.id, func(t *testing.T) {
			got, ok := ParseItem(tc.id)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIDsRoundTrip(t *testing.T) {
	for _, item := range Build(mode.Default, 200).Items() {
		_, ok := ParseItem(item.ID)
		assert.True(t, ok, "menu item %q must parse", item.ID)
	}
}

func TestBuild_ChecksCurrentState(t *testing.T) {
	menu := Build(mode.Ghost, 300)

	var checked []string
	for _, item := range menu.Items() {
		if item.Checked {
			checked = append(checked, item.ID)
		}
	}
	assert.Equal(t, []string{"size_300", "mode_ghost"}, checked)

	require.Len(t, menu.Size.Items, 5)
	assert.Equal(t, "300px ✓", menu.Size.Items[3].Label)
	assert.Equal(t, "100px", menu.Size.Items[0].Label)
	assert.Equal(t, "Ghost ✓", menu.Mode.Items[2].Label)
	assert.Equal(t, IDQuit, menu.Quit.ID)
}

func TestBuild_NonPresetSizeChecksNothing(t *testing.T) {
	for _, item := range Build(mode.Interactive, 275).Size.Items {
		assert.False(t, item.Checked)
	}
}
