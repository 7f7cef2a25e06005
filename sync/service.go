// Package sync orchestrates playlist downloads: it drives the external
// extraction engine, enforces tags on finished files, and records
// successes in the archive.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pkeller/ytmwatch/archive"
	"github.com/pkeller/ytmwatch/config"
	"github.com/pkeller/ytmwatch/engine"
	"github.com/pkeller/ytmwatch/metadata"
	"github.com/pkeller/ytmwatch/playlist"
	"github.com/pkeller/ytmwatch/report"
)

// Engine is the external extraction and download capability.
type Engine interface {
	Probe(ctx context.Context, url string) (*engine.PlaylistInfo, error)
	Download(ctx context.Context, req engine.Request) ([]engine.Item, error)
}

// Tagger is the tag-writing capability.
type Tagger interface {
	WriteTags(path string, ts metadata.TagSet) error
}

// Service runs orchestration passes over playlist descriptors.
type Service struct {
	settings config.Settings
	engine   Engine
	tagger   Tagger
	recorder *report.Recorder
	logger   *log.Logger
	limiter  *rate.Limiter
}

// NewService creates a Service. recorder may be nil to disable pass
// reports.
func NewService(settings config.Settings, eng Engine, tagger Tagger, recorder *report.Recorder, logger *log.Logger) *Service {
	var limiter *rate.Limiter
	if settings.RateLimit {
		// One item every few seconds, with a little burst headroom.
		limiter = rate.NewLimiter(rate.Every(3*time.Second), 1)
	}
	return &Service{
		settings: settings,
		engine:   eng,
		tagger:   tagger,
		recorder: recorder,
		logger:   logger,
		limiter:  limiter,
	}
}

// RunPass executes one orchestration pass over descriptors, in order. The
// archive is reloaded from disk so external edits are honored. Per-item
// and per-playlist failures are counted and logged, never returned; the
// error is non-nil only when the archive itself cannot be loaded.
func (s *Service) RunPass(ctx context.Context, descriptors []playlist.Descriptor) (*report.PassReport, error) {
	rep := &report.PassReport{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Playlists: len(descriptors),
	}

	store, err := archive.Load(s.settings.ArchiveFile)
	if err != nil {
		return rep, fmt.Errorf("cannot load archive: %w", err)
	}
	s.logger.Debug("archive loaded", "path", store.Path(), "entries", store.Len())

	for i, d := range descriptors {
		s.logger.Info("processing playlist",
			"run_id", rep.RunID,
			"position", fmt.Sprintf("%d/%d", i+1, len(descriptors)),
			"url", d.URL)
		s.processPlaylist(ctx, d, store, rep)
	}

	now := time.Now()
	rep.CompletedAt = &now
	s.logger.Info("pass complete",
		"run_id", rep.RunID,
		"downloaded", rep.Downloaded,
		"skipped", rep.Skipped,
		"item_failures", rep.ItemFailures,
		"tag_failures", rep.TagFailures,
		"playlist_failures", rep.PlaylistFailures)

	if s.recorder != nil {
		if err := s.recorder.Record(rep); err != nil {
			s.logger.Warn("failed to record pass report", "run_id", rep.RunID, "error", err)
		}
	}

	return rep, nil
}

// processPlaylist downloads and tags one playlist. Failures are recorded
// in rep and never abort the pass.
func (s *Service) processPlaylist(ctx context.Context, d playlist.Descriptor, store *archive.Store, rep *report.PassReport) {
	info, err := s.engine.Probe(ctx, d.URL)
	if err != nil {
		rep.PlaylistFailures++
		rep.Errors = append(rep.Errors, fmt.Sprintf("playlist %s: %v", d.URL, err))
		s.logger.Error("playlist unreachable", "url", d.URL, "error", err)
		return
	}

	album := d.Album
	if album == "" {
		album = info.Title
	}
	artist := d.Artist
	if artist == "" {
		artist = info.Uploader
	}

	dir := filepath.Join(s.settings.OutputDir, sanitizeAlbum(album))
	if err := os.MkdirAll(dir, 0755); err != nil {
		rep.PlaylistFailures++
		rep.Errors = append(rep.Errors, fmt.Sprintf("playlist %s: %v", d.URL, err))
		s.logger.Error("cannot create album directory", "dir", dir, "error", err)
		return
	}

	items, err := s.engine.Download(ctx, engine.Request{
		Entries:    info.Entries,
		OutputDir:  dir,
		Quality:    s.settings.Quality,
		MaxRetries: s.settings.MaxRetries,
		Exclude:    store.Contains,
		Limiter:    s.limiter,
	})
	if err != nil {
		rep.PlaylistFailures++
		rep.Errors = append(rep.Errors, fmt.Sprintf("playlist %s: %v", d.URL, err))
		s.logger.Error("playlist download failed", "url", d.URL, "error", err)
		return
	}

	for _, item := range items {
		switch {
		case item.Skipped:
			rep.Skipped++
			s.logger.Debug("item already archived", "id", item.ID, "title", item.Title)
		case item.Err != nil:
			rep.ItemFailures++
			rep.Errors = append(rep.Errors, fmt.Sprintf("item %s (%s): %v", item.ID, d.URL, item.Err))
			s.logger.Error("item download failed", "id", item.ID, "title", item.Title, "url", d.URL, "error", item.Err)
		default:
			s.finishItem(item, album, artist, store, rep)
		}
	}
}

// finishItem enforces the tag set and records the item in the archive.
// A tagging failure leaves the file on disk untagged and unarchived, so
// the next pass retries it.
func (s *Service) finishItem(item engine.Item, album, artist string, store *archive.Store, rep *report.PassReport) {
	ts := metadata.TagSet{
		Album:       album,
		AlbumArtist: artist,
		Track:       item.Index,
		Cover:       item.Thumbnail,
	}
	if err := s.tagger.WriteTags(item.Path, ts); err != nil {
		rep.TagFailures++
		rep.Errors = append(rep.Errors, fmt.Sprintf("tags %s: %v", item.Path, err))
		s.logger.Error("tag write failed, file left untagged", "path", item.Path, "id", item.ID, "error", err)
		return
	}

	if err := store.Append(item.ID); err != nil {
		s.logger.Error("failed to record item in archive", "id", item.ID, "error", err)
		return
	}

	rep.Downloaded++
	s.logger.Info("item complete", "id", item.ID, "title", item.Title, "path", item.Path)
}

// sanitizeAlbum turns an album name into a directory name.
func sanitizeAlbum(album string) string {
	album = strings.TrimSpace(album)
	album = strings.ReplaceAll(album, "/", "_")
	album = strings.ReplaceAll(album, "\\", "_")
	if album == "" {
		return "Unknown Playlist"
	}
	return album
}
