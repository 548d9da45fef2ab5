package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "lookup",
		Usage: "Multi-chain wallet inspection CLI",
		Description: `Inspect a wallet by raw address or human-readable handle.

Handles (.skr, .sol, .eth, or a bare alphanumeric name) are resolved to a
canonical on-chain address first; the activity command then fetches and
classifies the wallet's recent transactions.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Before: func(*cli.Context) error {
			_ = godotenv.Load()
			return nil
		},
		Commands: []*cli.Command{
			resolveCommand(),
			classifyAddressCommand(),
			activityCommand(),
			positionsCommand(),
			walletsCommand(),
			serveCommand(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	}))
}

// newHTTPClient builds the shared HTTP client for boundary collaborators.
// Collaborators are attempted once per call site; the resolver's fallback
// chain provides resilience instead of per-request retries.
func newHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = nil
	c.RetryMax = 0
	c.HTTPClient.Timeout = 10 * time.Second
	return c
}
