// FILE: logship/src/internal/transport/transport.go
package transport

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/filter"
	"logship/src/internal/sender"

	"github.com/lixenwraith/log"
)

// Transport is the delivery mechanism shared by every node of a logger tree.
type Transport interface {
	// Log enqueues an entry. It never blocks on I/O and never fails.
	Log(entry core.LogEntry)

	// Flush returns once every entry enqueued before the call has been
	// handed to the underlying delivery mechanism.
	Flush(ctx context.Context) error
}

// New builds the transport selected by a validated configuration, wrapped in
// a filter chain when filters are configured.
func New(cfg *config.Config, logger *log.Logger) (Transport, error) {
	t, err := newBase(cfg, logger)
	if err != nil || len(cfg.Filters) == 0 {
		return t, err
	}

	chain, err := filter.NewChain(cfg.Filters, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter chain: %w", err)
	}
	return NewFiltered(t, chain), nil
}

func newBase(cfg *config.Config, logger *log.Logger) (Transport, error) {
	switch cfg.Transport {
	case "http":
		httpSender, err := sender.NewHTTPSender(&cfg.HTTP, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP sender: %w", err)
		}
		return NewThrottled(httpSender, ThrottledOptions{
			Interval:     time.Duration(cfg.ThrottleMS) * time.Millisecond,
			FlushTimeout: time.Duration(cfg.FlushTimeoutMS) * time.Millisecond,
		}, logger), nil

	case "console":
		return NewConsole(cfg.Console, logger)

	case "none":
		return &Discard{}, nil

	default:
		return nil, fmt.Errorf("unknown transport type: %s", cfg.Transport)
	}
}

// Discard drops every entry.
type Discard struct {
	dropped atomic.Uint64
}

func (d *Discard) Log(core.LogEntry) {
	d.dropped.Add(1)
}

func (d *Discard) Flush(context.Context) error {
	return nil
}

// Dropped returns how many entries were discarded.
func (d *Discard) Dropped() uint64 {
	return d.dropped.Load()
}

// GetStats returns the transport's statistics.
func (d *Discard) GetStats() map[string]any {
	return map[string]any{
		"type":          "none",
		"total_dropped": d.dropped.Load(),
	}
}
