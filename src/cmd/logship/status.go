// FILE: logship/src/cmd/logship/status.go
package main

import (
	"context"
	"time"

	"logship/src/internal/transport"

	"github.com/lixenwraith/log"
)

type statsProvider interface {
	GetStats() map[string]any
}

// statusReporter periodically logs transport statistics
func statusReporter(ctx context.Context, t transport.Transport, interval time.Duration, diag *log.Logger) {
	provider, ok := t.(statsProvider)
	if !ok || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logTransportStats(provider, diag)
		}
	}
}

func logTransportStats(provider statsProvider, diag *log.Logger) {
	stats := provider.GetStats()
	statusFields := []any{
		"msg", "Transport status",
		"component", "status_reporter",
	}
	for _, key := range []string{"type", "pending_entries", "total_logged", "total_batches", "failed_batches", "lost_entries", "total_processed", "total_dropped"} {
		if v, ok := stats[key]; ok {
			statusFields = append(statusFields, key, v)
		}
	}
	diag.Info(statusFields...)
}
