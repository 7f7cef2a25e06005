package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/pkeller/ytmwatch/config"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitConfigError = 2
)

var (
	// Version is set at build time via ldflags
	// Example: go build -ldflags="-X main.Version=v1.2.3"
	Version = "dev"
)

func main() {
	_ = godotenv.Load()

	app := &cli.Command{
		Name:    "ytmwatch",
		Usage:   "Mirror YouTube Music playlists as tagged MP3 albums",
		Version: Version,
		Commands: []*cli.Command{
			runCommand(),
			watchCommand(),
			maintainCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(ExitConfigError)
		}
		os.Exit(ExitFailure)
	}
}
