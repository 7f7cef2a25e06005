package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/pkeller/ytmwatch/config"
	"github.com/pkeller/ytmwatch/engine"
	"github.com/pkeller/ytmwatch/logging"
	"github.com/pkeller/ytmwatch/maint"
	"github.com/pkeller/ytmwatch/metadata"
	"github.com/pkeller/ytmwatch/playlist"
	"github.com/pkeller/ytmwatch/report"
	"github.com/pkeller/ytmwatch/sync"
)

// resolveSettings layers defaults, the optional config file, environment
// variables, and CLI flags into one Settings value.
func resolveSettings(cmd *cli.Command) (config.Settings, error) {
	var file *config.FileConfig
	if path := cmd.String("config"); path != "" {
		f, err := config.LoadFile(path)
		if err != nil {
			return config.Settings{}, err
		}
		file = f
	}

	ov := config.Overrides{
		PlaylistFile: cmd.String("file"),

		OutputDir:    cmd.String("output-dir"),
		OutputDirSet: cmd.IsSet("output-dir"),

		Quality:    cmd.String("quality"),
		QualitySet: cmd.IsSet("quality"),

		RateLimit:    cmd.Bool("rate-limit"),
		RateLimitSet: cmd.IsSet("rate-limit"),

		MaxRetries:    int(cmd.Int("retries")),
		MaxRetriesSet: cmd.IsSet("retries"),

		PollInterval:    int(cmd.Int("interval")),
		PollIntervalSet: cmd.IsSet("interval"),

		LogFile:    cmd.String("log-file"),
		LogFileSet: cmd.IsSet("log-file"),

		Verbose:    cmd.Bool("verbose"),
		VerboseSet: cmd.IsSet("verbose"),

		ArchiveFile:    cmd.String("archive-file"),
		ArchiveFileSet: cmd.IsSet("archive-file"),
	}

	settings := config.Resolve(file, ov)
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}

// buildService wires the service from resolved settings. The playlist file
// must produce at least one valid entry; anything less is a fatal
// configuration error.
func buildService(settings config.Settings) (*sync.Service, []playlist.Descriptor, *log.Logger, func(), error) {
	logger, logCloser, err := logging.New(settings.Verbose, settings.LogFile)
	if err != nil {
		return nil, nil, nil, nil, &config.ConfigError{Message: err.Error()}
	}
	cleanup := func() {
		if logCloser != nil {
			logCloser.Close()
		}
	}

	entries, warnings, err := playlist.ParseFile(settings.PlaylistFile)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, &config.ConfigError{Message: err.Error()}
	}
	for _, w := range warnings {
		logger.Warn("skipping malformed playlist line", "detail", w.String())
	}
	if len(entries) == 0 {
		cleanup()
		return nil, nil, nil, nil, &config.ConfigError{
			Message: fmt.Sprintf("no playlist entries found in %s", settings.PlaylistFile),
		}
	}

	eng, err := engine.NewClient(logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, &config.ConfigError{Message: err.Error()}
	}

	recorder, err := report.NewRecorder(settings.ReportDir, settings.ReportRetention)
	if err != nil {
		logger.Warn("pass reports disabled", "error", err)
		recorder = nil
	}

	svc := sync.NewService(settings, eng, metadata.NewWriter(), recorder, logger)
	return svc, entries, logger, cleanup, nil
}

// runAction executes one orchestration pass. Per-item and per-playlist
// failures are logged and do not affect the exit code.
func runAction(ctx context.Context, cmd *cli.Command) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	svc, entries, logger, cleanup, err := buildService(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting one-shot pass",
		"playlists", len(entries),
		"output_dir", settings.OutputDir,
		"archive", settings.ArchiveFile)

	if _, err := svc.RunPass(ctx, entries); err != nil {
		return err
	}
	return nil
}

// watchAction runs the watchdog until SIGINT/SIGTERM. An interval of zero
// degrades to a single pass.
func watchAction(ctx context.Context, cmd *cli.Command) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	svc, entries, logger, cleanup, err := buildService(settings)
	if err != nil {
		return err
	}
	defer cleanup()

	if settings.PollInterval <= 0 {
		logger.Info("poll interval is zero, running a single pass")
		_, err := svc.RunPass(ctx, entries)
		return err
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := sync.NewWatchdog(svc, settings.PlaylistFile, time.Duration(settings.PollInterval)*time.Second, logger)
	w.Run(sigCtx)
	return nil
}

// maintainAction dispatches exactly one maintenance operation on an album
// directory.
func maintainAction(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return &config.ConfigError{Message: "album directory argument is required"}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return &config.ConfigError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	selected := 0
	for _, name := range []string{"clean-empty", "set-album-artist", "replaygain"} {
		if cmd.Bool(name) {
			selected++
		}
	}
	if selected != 1 {
		return &config.ConfigError{
			Message: "select exactly one of --clean-empty, --set-album-artist, --replaygain",
		}
	}

	switch {
	case cmd.Bool("clean-empty"):
		changed, err := maint.CleanEmptyFrames(dir)
		if err != nil {
			return err
		}
		fmt.Printf("Cleanup empty tags: %d file(s) changed\n", changed)
	case cmd.Bool("set-album-artist"):
		count, err := maint.SetAlbumFromFolder(dir)
		if err != nil {
			return err
		}
		fmt.Printf("Set album and album artist for %d file(s)\n", count)
	case cmd.Bool("replaygain"):
		tool, err := maint.ReplayGain(ctx, dir)
		if err != nil {
			return err
		}
		fmt.Printf("Loudness metadata written with %s\n", tool)
	}
	return nil
}
