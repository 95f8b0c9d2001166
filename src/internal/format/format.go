// FILE: logship/src/internal/format/format.go
package format

import (
	"fmt"

	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for transforming a LogEntry into a byte slice.
type Formatter interface {
	// Format takes a LogEntry and returns the formatted log as a byte slice.
	Format(entry core.LogEntry) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// Options configures formatter construction. Unused fields are ignored by
// formatters that do not support them.
type Options struct {
	Pretty          bool
	Color           bool
	TimestampFormat string
	Template        string
}

// New creates a new Formatter by name. An empty name selects "json".
func New(name string, opts Options, logger *log.Logger) (Formatter, error) {
	if name == "" {
		name = "json"
	}

	switch name {
	case "json":
		return NewJSONFormatter(opts, logger), nil
	case "txt", "text":
		return NewTextFormatter(opts, logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
