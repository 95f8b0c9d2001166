// FILE: logship/src/internal/format/json.go
package format

import (
	"encoding/json"
	"fmt"

	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// JSONFormatter encodes entries in their wire shape.
type JSONFormatter struct {
	pretty bool
	logger *log.Logger
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts Options, logger *log.Logger) *JSONFormatter {
	return &JSONFormatter{
		pretty: opts.Pretty,
		logger: logger,
	}
}

// Format encodes a single entry followed by a newline.
func (f *JSONFormatter) Format(entry core.LogEntry) ([]byte, error) {
	result, err := f.marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatBatch encodes entries as one JSON array, preserving their order.
// Entries that cannot be encoded are left out of the array; skipped reports
// how many. A batch where every entry was skipped yields a nil payload.
func (f *JSONFormatter) FormatBatch(entries []core.LogEntry) (payload []byte, skipped int, err error) {
	batch := make([]json.RawMessage, 0, len(entries))

	for i := range entries {
		encoded, err := json.Marshal(entries[i])
		if err != nil {
			skipped++
			f.logger.Warn("msg", "Failed to format entry in batch",
				"component", "json_formatter",
				"message", entries[i].Message,
				"error", err)
			continue
		}
		batch = append(batch, encoded)
	}

	if len(batch) == 0 && skipped > 0 {
		return nil, skipped, nil
	}

	payload, err = f.marshal(batch)
	return payload, skipped, err
}

func (f *JSONFormatter) marshal(v any) ([]byte, error) {
	if f.pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
