// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_CycleOrder(t *testing.T) {
	tests := []struct {
		from Mode
		want Mode
	}{
		{Interactive, Passthrough},
		{Passthrough, Ghost},
		{Ghost, Interactive},
	}

	for _, tc := range tests {
		t.Run(tc.from.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Next(tc.from))
		})
	}
}

func TestNext_PeriodThree(t *testing.T) {
	for _, start := range All {
		m := start
		for i := 0; i < 3; i++ {
			m = Next(m)
		}
		assert.Equal(t, start, m, "three advances from %s should return to it", start)

		// No shorter period.
		assert.NotEqual(t, start, Next(start))
		assert.NotEqual(t, start, Next(Next(start)))
	}
}

func TestNext_InvalidFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default, Next(Mode(42)))
}

func TestDefaultIsInteractive(t *testing.T) {
	assert.Equal(t, Interactive, Default)
	var zero Mode
	assert.Equal(t, Interactive, zero, "zero value must be the default mode")
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"interactive", Interactive, false},
		{"Passthrough", Passthrough, false},
		{" ghost ", Ghost, false},
		{"GHOST", Ghost, false},
		{"", Default, true},
		{"click-through", Default, true},
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
		})
	}
}

func TestMode_JSONUsesWireNames(t *testing.T) {
	data, err := json.Marshal(map[string]Mode{"mode": Passthrough})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"passthrough"}`, string(data))

	var decoded struct {
		Mode Mode `json:"mode"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"mode":"ghost"}`), &decoded))
	assert.Equal(t, Ghost, decoded.Mode)

	assert.Error(t, json.Unmarshal([]byte(`{"mode":"solid"}`), &decoded))
}

func TestMode_CursorHandling(t *testing.T) {
	assert.False(t, Interactive.IgnoresCursor())
	assert.True(t, Passthrough.IgnoresCursor())
	assert.True(t, Ghost.IgnoresCursor())

	assert.True(t, Passthrough.ForwardsHover())
	assert.False(t, Ghost.ForwardsHover())
}
