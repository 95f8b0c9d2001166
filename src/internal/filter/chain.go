// FILE: logship/src/internal/filter/chain.go
package filter

import (
	"fmt"
	"sync/atomic"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// Chain runs filters in order. An entry survives only if every filter
// keeps it; evaluation stops at the first drop.
type Chain struct {
	filters []*Filter

	seen atomic.Uint64
	kept atomic.Uint64
}

// NewChain compiles configs in order.
func NewChain(configs []config.FilterConfig, logger *log.Logger) (*Chain, error) {
	c := &Chain{filters: make([]*Filter, 0, len(configs))}
	for i := range configs {
		f, err := NewFilter(configs[i], logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		c.filters = append(c.filters, f)
	}
	return c, nil
}

func (c *Chain) Apply(entry core.LogEntry) bool {
	c.seen.Add(1)
	for _, f := range c.filters {
		if !f.Apply(entry) {
			return false
		}
	}
	c.kept.Add(1)
	return true
}

// Len returns the number of filters.
func (c *Chain) Len() int {
	return len(c.filters)
}

// GetStats returns chain counters and per-filter statistics.
func (c *Chain) GetStats() map[string]any {
	perFilter := make([]map[string]any, 0, len(c.filters))
	for _, f := range c.filters {
		perFilter = append(perFilter, f.GetStats())
	}

	kept := c.kept.Load()
	seen := c.seen.Load()
	return map[string]any{
		"filter_count": len(c.filters),
		"seen":         seen,
		"kept":         kept,
		"dropped":      seen - kept,
		"filters":      perFilter,
	}
}
