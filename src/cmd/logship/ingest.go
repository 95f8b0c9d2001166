// FILE: logship/src/cmd/logship/ingest.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"logship/src/internal/core"
	"logship/src/internal/logship"
)

const maxLineBytes = 1024 * 1024

// Keys of a JSON line that become entry attributes instead of fields
var reservedKeys = map[string]bool{
	"level":   true,
	"message": true,
	"msg":     true,
	"_time":   true,
}

// ingest logs every non-empty line of r until EOF or ctx is done and returns
// the number of entries logged.
func ingest(ctx context.Context, r io.Reader, l *logship.Logger, defaultLevel core.Level) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	count := 0
	for {
		// Checked before reading so a line already read is never discarded
		if err := ctx.Err(); err != nil {
			return count, err
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		level, message, fields := parseLine(line, defaultLevel)
		l.Log(level, message, fields)
		count++
	}

	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read input: %w", err)
	}
	return count, nil
}

// parseLine accepts a JSON object carrying level and message/msg, with any
// other keys as fields. Anything else is a plain message.
func parseLine(line string, defaultLevel core.Level) (core.Level, string, map[string]any) {
	if !strings.HasPrefix(line, "{") {
		return defaultLevel, line, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return defaultLevel, line, nil
	}

	level := defaultLevel
	if s, ok := obj["level"].(string); ok {
		if parsed, err := core.ParseLevel(s); err == nil {
			level = parsed
		}
	}

	message, ok := obj["message"].(string)
	if !ok {
		message, _ = obj["msg"].(string)
	}

	fields := make(map[string]any, len(obj))
	for k, v := range obj {
		if !reservedKeys[k] {
			fields[k] = v
		}
	}
	return level, message, fields
}
