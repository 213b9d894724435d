// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Default(t *testing.T) {
	acc, err := Parse(DefaultAccelerator)
	require.NoError(t, err)
	assert.Equal(t, Accelerator{Ctrl: true, Shift: true, Key: "D"}, acc)
	assert.Equal(t, DefaultAccelerator, acc.String())
	assert.Equal(t, "ctrl+d", acc.TerminalKey())
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Accelerator
		term    string
		wantErr bool
	}{
		{in: "Ctrl+Alt+p", want: Accelerator{Ctrl: true, Alt: true, Key: "P"}, term: "ctrl+alt+p"},
		{in: "alt+F5", want: Accelerator{Alt: true, Key: "F5"}, term: "alt+f5"},
		{in: "Shift+X", want: Accelerator{Shift: true, Key: "X"}, term: "X"},
		{in: "Super+Space", want: Accelerator{Cmd: true, Key: "SPACE"}, term: "space"},
		{in: " cmdorctrl + shift + d ", want: Accelerator{Ctrl: true, Shift: true, Key: "D"}, term: "ctrl+d"},
		{in: "", wantErr: true},
		{in: "Ctrl+Shift", wantErr: true},
		{in: "Ctrl++D", wantErr: true},
		{in: "D+Ctrl", wantErr: true},
		{in: "A+B", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.term, got.TerminalKey())
		})
	}
}

func TestParse_EmptySentinel(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)
}
