// FILE: logship/src/internal/config/logging.go
package config

import "fmt"

// LogConfig controls logship's own diagnostic output, separate from the
// entries it ships.
type LogConfig struct {
	// "stderr", "stdout", "file" or "none"
	Output string `toml:"output"`

	// "debug", "info", "warn", "error"
	Level string `toml:"level"`

	// "txt" or "json"
	Format string `toml:"format"`

	// Used when Output is "file"
	File LogFileConfig `toml:"file"`
}

// LogFileConfig describes rotated diagnostic log files.
type LogFileConfig struct {
	Directory      string  `toml:"directory"`
	Name           string  `toml:"name"`
	MaxSizeMB      int64   `toml:"max_size_mb"`
	RetentionHours float64 `toml:"retention_hours"`
}

// DefaultLogConfig keeps diagnostics quiet unless something goes wrong.
func DefaultLogConfig() *LogConfig {
	return &LogConfig{
		Output: "stderr",
		Level:  "warn",
		Format: "txt",
		File: LogFileConfig{
			Directory:      "./log",
			Name:           "logship",
			MaxSizeMB:      10,
			RetentionHours: 72,
		},
	}
}

func validateLogConfig(cfg *LogConfig) error {
	switch cfg.Output {
	case "stdout", "stderr", "none":
	case "file":
		if cfg.File.Directory == "" || cfg.File.Name == "" {
			return fmt.Errorf("file output requires logging.file.directory and logging.file.name")
		}
		if cfg.File.MaxSizeMB < 0 || cfg.File.RetentionHours < 0 {
			return fmt.Errorf("logging.file limits cannot be negative")
		}
	default:
		return fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	switch cfg.Format {
	case "", "txt", "json":
	default:
		return fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	return nil
}
