// FILE: logship/src/cmd/logship/ingest_test.go
package main

import (
	"context"
	"io"
	"strings"
	"testing"

	"logship/src/internal/core"
	"logship/src/internal/logship"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memTransport keeps entries in memory.
type memTransport struct {
	entries []core.LogEntry
}

func (m *memTransport) Log(e core.LogEntry)         { m.entries = append(m.entries, e) }
func (m *memTransport) Flush(context.Context) error { return nil }

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		level   core.Level
		message string
		fields  map[string]any
	}{
		{
			name:    "PlainText",
			line:    "connection reset by peer",
			level:   core.LevelInfo,
			message: "connection reset by peer",
		},
		{
			name:    "JSONWithMessage",
			line:    `{"level":"error","message":"db down","retry":true}`,
			level:   core.LevelError,
			message: "db down",
			fields:  map[string]any{"retry": true},
		},
		{
			name:    "JSONWithMsgAndUnknownLevel",
			line:    `{"level":"trace","msg":"tick","n":1}`,
			level:   core.LevelInfo,
			message: "tick",
			fields:  map[string]any{"n": float64(1)},
		},
		{
			name:    "BrokenJSON",
			line:    `{"level":"warn"`,
			level:   core.LevelInfo,
			message: `{"level":"warn"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, message, fields := parseLine(tc.line, core.LevelInfo)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.message, message)
			if tc.fields == nil {
				assert.Empty(t, fields)
			} else {
				assert.Equal(t, tc.fields, fields)
			}
		})
	}
}

func TestIngest(t *testing.T) {
	mem := &memTransport{}
	l := logship.New(mem, logship.WithFields(map[string]any{"host": "web-1"}))

	input := strings.Join([]string{
		"first line",
		"",
		`{"level":"warn","message":"second","host":"web-2"}`,
		"   ",
		"third",
	}, "\n")

	n, err := ingest(context.Background(), strings.NewReader(input), l, core.LevelDebug)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.Len(t, mem.entries, 3)
	assert.Equal(t, "debug", mem.entries[0].Level)
	assert.Equal(t, map[string]any{"host": "web-1"}, mem.entries[0].Fields)
	assert.Equal(t, "warn", mem.entries[1].Level)
	assert.Equal(t, map[string]any{"host": "web-2"}, mem.entries[1].Fields, "line fields override bound fields")
	assert.Equal(t, "third", mem.entries[2].Message)
}

func TestIngest_Cancelled(t *testing.T) {
	mem := &memTransport{}
	l := logship.New(mem)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := ingest(ctx, strings.NewReader("a\nb\n"), l, core.LevelInfo)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

// cancelingReader cancels its context while handing out data, like a signal
// arriving during a blocking read of stdin.
type cancelingReader struct {
	data   string
	cancel context.CancelFunc
}

func (r *cancelingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, io.EOF
	}
	r.cancel()
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestIngest_LineReadDuringCancelIsLogged(t *testing.T) {
	mem := &memTransport{}
	l := logship.New(mem)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := ingest(ctx, &cancelingReader{data: "last words\n", cancel: cancel}, l, core.LevelInfo)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
	require.Len(t, mem.entries, 1)
	assert.Equal(t, "last words", mem.entries[0].Message)
}

func TestParseFlags(t *testing.T) {
	cfg, err := ParseFlags([]string{"-field", "app=api", "-field", "env=prod", "-level", "warn", "--", "--throttle_ms=250"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"app": "api", "env": "prod"}, map[string]any(cfg.Fields))
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, []string{"--throttle_ms=250"}, cfg.ConfigArgs)

	_, err = ParseFlags([]string{"-field", "novalue"})
	assert.Error(t, err)
}
