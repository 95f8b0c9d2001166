// FILE: logship/src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"logship/src/internal/config"
	"logship/src/internal/core"

	"github.com/lixenwraith/log"
)

// Filter keeps or drops entries whose subject matches a set of patterns.
// The subject is "level message", or one field's value when Field is set.
type Filter struct {
	kind     config.FilterType
	logic    config.FilterLogic
	field    string
	patterns []*regexp.Regexp

	// Statistics
	seen    atomic.Uint64
	matched atomic.Uint64
	dropped atomic.Uint64
}

// NewFilter compiles cfg. Empty type and logic default to include and or.
func NewFilter(cfg config.FilterConfig, logger *log.Logger) (*Filter, error) {
	f := &Filter{
		kind:     cfg.Type,
		logic:    cfg.Logic,
		field:    cfg.Field,
		patterns: make([]*regexp.Regexp, len(cfg.Patterns)),
	}
	if f.kind == "" {
		f.kind = config.FilterTypeInclude
	}
	if f.logic == "" {
		f.logic = config.FilterLogicOr
	}

	switch f.logic {
	case config.FilterLogicOr, config.FilterLogicAnd:
	default:
		return nil, fmt.Errorf("unknown filter logic '%s'", f.logic)
	}

	for i, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, p, err)
		}
		f.patterns[i] = re
	}

	logger.Debug("msg", "Filter compiled",
		"component", "filter",
		"type", f.kind,
		"logic", f.logic,
		"field", f.field,
		"pattern_count", len(f.patterns))
	return f, nil
}

// Apply reports whether entry is kept. A filter without patterns keeps
// everything.
func (f *Filter) Apply(entry core.LogEntry) bool {
	f.seen.Add(1)
	if len(f.patterns) == 0 {
		return true
	}

	hit := f.match(f.subject(entry))
	if hit {
		f.matched.Add(1)
	}

	keep := hit == (f.kind == config.FilterTypeInclude)
	if !keep {
		f.dropped.Add(1)
	}
	return keep
}

// subject is the text patterns run against. A missing field yields "".
func (f *Filter) subject(entry core.LogEntry) string {
	if f.field == "" {
		if entry.Level == "" {
			return entry.Message
		}
		return entry.Level + " " + entry.Message
	}

	switch v := entry.Fields[f.field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// match applies the patterns with or/and logic.
func (f *Filter) match(text string) bool {
	wantAll := f.logic == config.FilterLogicAnd
	for _, re := range f.patterns {
		if re.MatchString(text) != wantAll {
			// First hit decides "or", first miss decides "and"
			return !wantAll
		}
	}
	return wantAll
}

// GetStats returns the filter's counters.
func (f *Filter) GetStats() map[string]any {
	return map[string]any{
		"type":          f.kind,
		"logic":         f.logic,
		"field":         f.field,
		"pattern_count": len(f.patterns),
		"seen":          f.seen.Load(),
		"matched":       f.matched.Load(),
		"dropped":       f.dropped.Load(),
	}
}
