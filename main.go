package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"marketfetch/internal/config"
	"marketfetch/internal/coordinator"
	"marketfetch/internal/fetcher"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one batch and returns the process exit code: 0 when the batch
// ran (even if some fetches failed), 1 on a fatal configuration or output
// directory error, 2 on bad flags.
func run(args []string, stdout, stderr io.Writer) int {
	flags := config.NewFlagSet("marketfetch")
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	settings, err := config.LoadSettings(flags)
	if err != nil {
		slog.New(slog.NewTextHandler(stderr, nil)).Error("invalid settings", "error", err)
		return 2
	}

	level, _ := settings.Level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Load configuration
	cfg, err := config.LoadAll(settings)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return 1
	}

	f := fetcher.NewProcessFetcher(settings.Executable,
		fetcher.WithTimeout(settings.FetchTimeout),
		fetcher.WithOutput(stdout, nil),
		fetcher.WithLogger(logger))

	coord := coordinator.New(f,
		coordinator.WithOutput(stdout),
		coordinator.WithLogger(logger),
		coordinator.WithMinInterval(settings.MinInterval))

	if _, err := coord.Run(context.Background(), cfg); err != nil {
		logger.Error("batch aborted", "error", err)
		return 1
	}

	return 0
}
