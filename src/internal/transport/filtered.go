// FILE: logship/src/internal/transport/filtered.go
package transport

import (
	"context"

	"logship/src/internal/core"
	"logship/src/internal/filter"
)

// Filtered drops entries rejected by a filter chain before they reach the
// wrapped transport.
type Filtered struct {
	inner Transport
	chain *filter.Chain
}

// NewFiltered wraps inner with chain.
func NewFiltered(inner Transport, chain *filter.Chain) *Filtered {
	return &Filtered{inner: inner, chain: chain}
}

func (f *Filtered) Log(entry core.LogEntry) {
	if f.chain.Apply(entry) {
		f.inner.Log(entry)
	}
}

func (f *Filtered) Flush(ctx context.Context) error {
	return f.inner.Flush(ctx)
}

// Unwrap returns the wrapped transport.
func (f *Filtered) Unwrap() Transport {
	return f.inner
}

// GetStats returns the wrapped transport's statistics plus filter counters.
func (f *Filtered) GetStats() map[string]any {
	stats := map[string]any{}
	if sp, ok := f.inner.(interface{ GetStats() map[string]any }); ok {
		for k, v := range sp.GetStats() {
			stats[k] = v
		}
	}
	stats["filters"] = f.chain.GetStats()
	return stats
}
