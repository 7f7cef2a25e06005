package sync

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pkeller/ytmwatch/playlist"
)

// Watchdog re-runs orchestration passes on a fixed interval. The playlist
// file is re-parsed before every pass so edits take effect on the next
// cycle.
type Watchdog struct {
	service      *Service
	playlistFile string
	interval     time.Duration
	logger       *log.Logger
}

// NewWatchdog creates a watchdog around svc.
func NewWatchdog(svc *Service, playlistFile string, interval time.Duration, logger *log.Logger) *Watchdog {
	return &Watchdog{
		service:      svc,
		playlistFile: playlistFile,
		interval:     interval,
		logger:       logger,
	}
}

// Run executes passes until ctx is cancelled. Cancellation is observed
// only between passes: an in-flight pass always completes, so a
// termination signal never aborts an item mid-download.
func (w *Watchdog) Run(ctx context.Context) {
	w.logger.Info("watchdog active", "interval", w.interval, "file", w.playlistFile)

	for {
		w.runOnce()

		select {
		case <-ctx.Done():
			w.logger.Info("termination signal observed, stopping")
			return
		case <-time.After(w.interval):
		}
	}
}

// runOnce parses the playlist file and runs a single pass. Errors keep the
// watchdog alive; a broken playlist file should not kill the daemon.
func (w *Watchdog) runOnce() {
	entries, warnings, err := playlist.ParseFile(w.playlistFile)
	if err != nil {
		w.logger.Error("cannot read playlist file", "file", w.playlistFile, "error", err)
		return
	}
	for _, warn := range warnings {
		w.logger.Warn("skipping malformed playlist line", "file", w.playlistFile, "detail", warn.String())
	}
	if len(entries) == 0 {
		w.logger.Warn("no playlist entries found", "file", w.playlistFile)
		return
	}

	// The pass runs under its own context so a signal cannot cancel it.
	if _, err := w.service.RunPass(context.Background(), entries); err != nil {
		w.logger.Error("pass failed", "error", err)
	}
}
