// FILE: logship/src/cmd/logship/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// FlagConfig holds command-line flags. Everything after "--" is handed to the
// config loader as key=value overrides.
type FlagConfig struct {
	ConfigFile      string
	ShowVersion     bool
	Quiet           bool
	Level           string
	Fields          fieldFlags
	WriteConfig     string
	ShutdownTimeout time.Duration
	StatsInterval   time.Duration
	MetricsAddr     string
	ConfigArgs      []string
}

// fieldFlags collects repeated -field key=value flags.
type fieldFlags map[string]any

func (f fieldFlags) String() string {
	parts := make([]string, 0, len(f))
	for k, v := range f {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (f fieldFlags) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return fmt.Errorf("field must be key=value, got %q", value)
	}
	f[key] = val
	return nil
}

// ParseFlags parses args, typically os.Args[1:].
func ParseFlags(args []string) (*FlagConfig, error) {
	cfg := &FlagConfig{Fields: fieldFlags{}}

	fs := flag.NewFlagSet("logship", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { customUsage(fs) }

	fs.StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Suppress logship's own diagnostics")
	fs.StringVar(&cfg.Level, "level", "info", "Level for lines that do not carry one")
	fs.Var(cfg.Fields, "field", "Field bound to every entry, key=value (repeatable)")
	fs.StringVar(&cfg.WriteConfig, "write-config", "", "Write the effective configuration to this path and exit")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "Maximum time for the final flush")
	fs.DurationVar(&cfg.StatsInterval, "stats-interval", 0, "Log transport statistics at this interval (0 = off)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9464")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.ConfigArgs = fs.Args()

	return cfg, nil
}

func customUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "logship - ship stdin lines to a log ingest endpoint\n\n")
	fmt.Fprintf(os.Stderr, "Usage: %s [options] [-- config overrides]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	fs.PrintDefaults()

	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  # Print entries to the console (no endpoint configured)\n")
	fmt.Fprintf(os.Stderr, "  tail -f app.log | %s -field host=$(hostname)\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  # Ship to an ingest endpoint\n")
	fmt.Fprintf(os.Stderr, "  LOGSHIP_HTTP_URL=https://ingest.example.com/v1/logs %s < app.log\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  # Override config values\n")
	fmt.Fprintf(os.Stderr, "  %s -- --throttle_ms=250 --http.url=https://ingest.example.com/v1/logs\n\n", os.Args[0])

	fmt.Fprintf(os.Stderr, "Environment Variables:\n")
	fmt.Fprintf(os.Stderr, "  LOGSHIP_CONFIG_FILE   Config file path\n")
	fmt.Fprintf(os.Stderr, "  LOGSHIP_CONFIG_DIR    Config directory\n")
	fmt.Fprintf(os.Stderr, "  LOGSHIP_<KEY>         Any config key, dots become underscores (LOGSHIP_HTTP_URL)\n")
}
