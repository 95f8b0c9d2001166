// FILE: logship/src/internal/core/entry.go
package core

import "time"

// TimeFormat is the layout used for the _time field of every entry.
const TimeFormat = time.RFC3339Nano

// LogEntry is one structured log record as it appears on the wire.
type LogEntry struct {
	Time    string         `json:"_time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"fields"`
}

// NewEntry builds an entry stamped with t. Fields is never nil so it always
// encodes as a JSON object.
func NewEntry(t time.Time, level Level, message string, fields map[string]any) LogEntry {
	if fields == nil {
		fields = make(map[string]any)
	}
	return LogEntry{
		Time:    t.UTC().Format(TimeFormat),
		Level:   level.String(),
		Message: message,
		Fields:  fields,
	}
}

// MergeFields returns a fresh map holding base overlaid by each override in
// order. Later maps win on key collision. Inputs are never modified.
func MergeFields(base map[string]any, overrides ...map[string]any) map[string]any {
	size := len(base)
	for _, o := range overrides {
		size += len(o)
	}

	merged := make(map[string]any, size)
	for k, v := range base {
		merged[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			merged[k] = v
		}
	}
	return merged
}
