// FILE: logship/src/internal/logship/logger.go
package logship

import (
	"context"

	"logship/src/internal/core"
	"logship/src/internal/transport"

	"github.com/benbjohnson/clock"
)

// Logger is one scope in a tree of loggers. Its bound fields never change
// after creation; With derives a child instead.
//
// Every node of a tree references the root's transport, so flushing any node
// drains entries logged anywhere in the tree. Parents hold no references to
// their children.
type Logger struct {
	fields    map[string]any
	transport transport.Transport
	level     core.Level
	clock     clock.Clock
}

// Option configures a root Logger.
type Option func(*Logger)

// WithLevel drops entries below min.
func WithLevel(min core.Level) Option {
	return func(l *Logger) { l.level = min }
}

// WithClock sets the clock used to stamp entries.
func WithClock(c clock.Clock) Option {
	return func(l *Logger) { l.clock = c }
}

// WithFields binds fields on the root.
func WithFields(fields map[string]any) Option {
	return func(l *Logger) { l.fields = core.MergeFields(l.fields, fields) }
}

// New creates a root logger over t.
func New(t transport.Transport, opts ...Option) *Logger {
	l := &Logger{
		fields:    map[string]any{},
		transport: t,
		level:     core.LevelDebug,
		clock:     clock.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// With returns a child whose bound fields are l's overlaid by fields.
// l is left unchanged.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{
		fields:    core.MergeFields(l.fields, fields),
		transport: l.transport,
		level:     l.level,
		clock:     l.clock,
	}
}

// Log builds an entry and enqueues it on the shared transport. Call-site
// fields override bound fields, later maps override earlier ones.
func (l *Logger) Log(level core.Level, message string, fields ...map[string]any) {
	if !level.Enabled(l.level) {
		return
	}
	entry := core.NewEntry(l.clock.Now(), level, message, core.MergeFields(l.fields, fields...))
	l.transport.Log(entry)
}

func (l *Logger) Debug(message string, fields ...map[string]any) {
	l.Log(core.LevelDebug, message, fields...)
}

func (l *Logger) Info(message string, fields ...map[string]any) {
	l.Log(core.LevelInfo, message, fields...)
}

func (l *Logger) Warn(message string, fields ...map[string]any) {
	l.Log(core.LevelWarn, message, fields...)
}

func (l *Logger) Error(message string, fields ...map[string]any) {
	l.Log(core.LevelError, message, fields...)
}

// Flush drains the shared transport, covering every node of the tree.
func (l *Logger) Flush(ctx context.Context) error {
	return l.transport.Flush(ctx)
}

// Fields returns a copy of the bound fields.
func (l *Logger) Fields() map[string]any {
	return core.MergeFields(l.fields)
}

// Level returns the minimum level.
func (l *Logger) Level() core.Level {
	return l.level
}

// Transport returns the shared transport.
func (l *Logger) Transport() transport.Transport {
	return l.transport
}
