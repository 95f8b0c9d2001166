// FILE: logship/src/internal/transport/console.go
package transport

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/format"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// Console writes each entry as soon as it is logged, so Flush has nothing
// to wait for.
type Console struct {
	target    string
	stdout    io.Writer
	stderr    io.Writer
	formatter format.Formatter
	logger    *log.Logger

	mu sync.Mutex

	// Statistics
	totalProcessed atomic.Uint64
	totalFailed    atomic.Uint64
}

// NewConsole creates a console transport writing to the process streams.
func NewConsole(cfg config.ConsoleConfig, logger *log.Logger) (*Console, error) {
	return newConsole(cfg, os.Stdout, os.Stderr, logger)
}

func newConsole(cfg config.ConsoleConfig, stdout, stderr io.Writer, logger *log.Logger) (*Console, error) {
	if cfg.Target == "" {
		cfg.Target = "stdout"
	}

	primary := stdout
	if cfg.Target == "stderr" {
		primary = stderr
	}

	formatter, err := format.New(cfg.Format, format.Options{
		Color:           useColor(cfg.Color, primary),
		Pretty:          cfg.Pretty,
		Template:        cfg.Template,
		TimestampFormat: cfg.TimestampFormat,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Console{
		target:    cfg.Target,
		stdout:    stdout,
		stderr:    stderr,
		formatter: formatter,
		logger:    logger,
	}, nil
}

// Log formats and writes entry. Write errors are counted, never returned.
func (c *Console) Log(entry core.LogEntry) {
	c.totalProcessed.Add(1)

	formatted, err := c.formatter.Format(entry)
	if err != nil {
		c.totalFailed.Add(1)
		c.logger.Error("msg", "Failed to format entry for console",
			"component", "console_transport",
			"error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.writerFor(entry.Level).Write(formatted); err != nil {
		c.totalFailed.Add(1)
	}
}

func (c *Console) Flush(context.Context) error {
	return nil
}

// GetStats returns the transport's statistics.
func (c *Console) GetStats() map[string]any {
	return map[string]any{
		"type":            "console",
		"target":          c.target,
		"format":          c.formatter.Name(),
		"total_processed": c.totalProcessed.Load(),
		"total_failed":    c.totalFailed.Load(),
	}
}

// writerFor routes warn and error to stderr in split mode.
func (c *Console) writerFor(level string) io.Writer {
	switch c.target {
	case "stderr":
		return c.stderr
	case "split":
		if level == core.LevelWarn.String() || level == core.LevelError.String() {
			return c.stderr
		}
		return c.stdout
	default:
		return c.stdout
	}
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
