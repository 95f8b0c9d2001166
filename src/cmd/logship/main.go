// FILE: logship/src/cmd/logship/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"logship/src/internal/config"
	"logship/src/internal/core"
	"logship/src/internal/logship"
	"logship/src/internal/version"

	"github.com/lixenwraith/log"
)

func main() {
	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("LOGSHIP_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.Load(flagCfg.ConfigArgs)
	if err != nil {
		FatalError(1, "Failed to load config: %v\n", err)
	}

	if flagCfg.WriteConfig != "" {
		if err := cfg.SaveToFile(flagCfg.WriteConfig); err != nil {
			FatalError(1, "Failed to write config: %v\n", err)
		}
		output.Print("Configuration written to %s\n", flagCfg.WriteConfig)
		os.Exit(0)
	}

	defaultLevel, err := core.ParseLevel(flagCfg.Level)
	if err != nil {
		FatalError(2, "Invalid -level: %v\n", err)
	}

	diag, err := initializeLogger(cfg, flagCfg.Quiet)
	if err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}

	os.Exit(run(cfg, flagCfg, defaultLevel, diag))
}

// run ships stdin until EOF or a termination signal and returns the exit code.
func run(cfg *config.Config, flagCfg *FlagConfig, defaultLevel core.Level, diag *log.Logger) int {
	defer shutdownLogger(diag)

	l, err := logship.FromConfig(cfg, diag, logship.WithFields(flagCfg.Fields))
	if err != nil {
		diag.Error("msg", "Failed to create logger", "error", err)
		return 1
	}

	diag.Info("msg", "logship starting",
		"version", version.Short(),
		"transport", cfg.Transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go statusReporter(ctx, l.Transport(), flagCfg.StatsInterval, diag)

	if flagCfg.MetricsAddr != "" {
		if err := startMetrics(ctx, flagCfg.MetricsAddr, l.Transport(), diag); err != nil {
			diag.Error("msg", "Metrics disabled", "error", err)
			output.Error("logship: metrics disabled: %v\n", err)
		}
	}

	type result struct {
		count int
		err   error
	}
	done := make(chan result, 1)
	go func() {
		n, err := ingest(ctx, os.Stdin, l, defaultLevel)
		done <- result{n, err}
	}()

	exitCode := 0
	select {
	case res := <-done:
		if res.err != nil {
			diag.Error("msg", "Input stopped", "error", res.err, "entries", res.count)
			exitCode = 1
		}
		diag.Debug("msg", "Input exhausted", "entries", res.count)
	case sig := <-sigChan:
		diag.Info("msg", "Shutdown signal received, flushing", "signal", sig.String())
		cancel()
	}

	flushCtx, flushCancel := context.WithTimeout(context.Background(), flagCfg.ShutdownTimeout)
	defer flushCancel()

	if err := l.Flush(flushCtx); err != nil {
		diag.Error("msg", "Final flush failed", "error", err)
		output.Error("logship: final flush failed: %v\n", err)
		return 1
	}

	diag.Info("msg", "Shutdown complete")
	return exitCode
}
