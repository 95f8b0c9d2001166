// FILE: logship/src/internal/logship/config.go
package logship

import (
	"fmt"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/transport"

	"github.com/lixenwraith/log"
)

// FromConfig builds a root logger and its transport from a validated
// configuration. diag receives logship's own diagnostics.
func FromConfig(cfg *config.Config, diag *log.Logger, opts ...Option) (*Logger, error) {
	level, err := core.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	t, err := transport.New(cfg, diag)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	diag.Info("msg", "Logger created",
		"component", "logship",
		"transport", cfg.Transport,
		"level", level.String(),
		"throttle_ms", cfg.ThrottleMS)

	return New(t, append([]Option{WithLevel(level)}, opts...)...), nil
}
