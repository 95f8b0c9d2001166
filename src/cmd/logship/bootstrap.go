// FILE: logship/src/cmd/logship/bootstrap.go
package main

import (
	"fmt"
	"strings"
	"time"

	"logship/src/internal/config"

	"github.com/lixenwraith/log"
)

// initializeLogger sets up logship's diagnostic logger from configuration
func initializeLogger(cfg *config.Config, quiet bool) (*log.Logger, error) {
	diag := log.NewLogger()

	if quiet || cfg.Logging.Output == "none" {
		return diag, diag.InitWithDefaults(
			"disable_file=true",
			"enable_stdout=false",
			"level=255")
	}

	levelValue, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	configArgs := []string{fmt.Sprintf("level=%d", levelValue)}
	if cfg.Logging.Output == "file" {
		file := cfg.Logging.File
		configArgs = append(configArgs,
			"enable_stdout=false",
			fmt.Sprintf("directory=%s", file.Directory),
			fmt.Sprintf("name=%s", file.Name),
			fmt.Sprintf("max_size_mb=%d", file.MaxSizeMB))
		if file.RetentionHours > 0 {
			configArgs = append(configArgs,
				fmt.Sprintf("retention_period_hrs=%.1f", file.RetentionHours))
		}
	} else {
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			fmt.Sprintf("stdout_target=%s", cfg.Logging.Output))
	}
	if cfg.Logging.Format != "" {
		configArgs = append(configArgs, fmt.Sprintf("format=%s", cfg.Logging.Format))
	}

	return diag, diag.InitWithDefaults(configArgs...)
}

func shutdownLogger(diag *log.Logger) {
	if diag == nil {
		return
	}
	if err := diag.Shutdown(2 * time.Second); err != nil {
		// Best effort, the logger itself is gone
		output.Error("Logger shutdown error: %v\n", err)
	}
}

func parseLogLevel(level string) (int64, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
