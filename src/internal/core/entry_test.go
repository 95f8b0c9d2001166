// FILE: logship/src/internal/core/entry_test.go
package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFields(t *testing.T) {
	t.Run("LaterMapsWin", func(t *testing.T) {
		base := map[string]any{"foo": "bar", "keep": 1}
		merged := MergeFields(base, map[string]any{"foo": "baz"}, map[string]any{"foo": "qux", "new": true})

		assert.Equal(t, map[string]any{"foo": "qux", "keep": 1, "new": true}, merged)
	})

	t.Run("InputsUntouched", func(t *testing.T) {
		base := map[string]any{"foo": "bar"}
		override := map[string]any{"foo": "baz"}
		merged := MergeFields(base, override)
		merged["extra"] = 1

		assert.Equal(t, map[string]any{"foo": "bar"}, base)
		assert.Equal(t, map[string]any{"foo": "baz"}, override)
	})

	t.Run("NilInputs", func(t *testing.T) {
		merged := MergeFields(nil, nil)
		require.NotNil(t, merged)
		assert.Empty(t, merged)
	})
}

func TestNewEntry(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 5, time.FixedZone("x", 3600))
	entry := NewEntry(ts, LevelWarn, "disk almost full", nil)

	assert.Equal(t, "2024-03-01T09:00:00.000000005Z", entry.Time)
	assert.Equal(t, "warn", entry.Level)

	out, err := json.Marshal(entry)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "disk almost full", decoded["message"])
	assert.Equal(t, map[string]any{}, decoded["fields"], "empty fields must encode as an object")
	assert.Contains(t, decoded, "_time")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input       string
		expected    Level
		expectError bool
	}{
		{input: "debug", expected: LevelDebug},
		{input: "INFO", expected: LevelInfo},
		{input: "warning", expected: LevelWarn},
		{input: " error ", expected: LevelError},
		{input: "fatal", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			level, err := ParseLevel(tc.input)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestLevel_Enabled(t *testing.T) {
	assert.True(t, LevelError.Enabled(LevelInfo))
	assert.True(t, LevelInfo.Enabled(LevelInfo))
	assert.False(t, LevelDebug.Enabled(LevelInfo))
}
