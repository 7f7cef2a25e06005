// Package engine drives the external yt-dlp extraction and download
// toolchain. It probes playlists for metadata and downloads entries as
// MP3 files with sidecar thumbnails; tag enforcement happens upstream.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// ytDlpPlaylist mirrors the JSON yt-dlp emits for -J --flat-playlist.
type ytDlpPlaylist struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Uploader string       `json:"uploader,omitempty"`
	Channel  string       `json:"channel,omitempty"`
	Entries  []ytDlpEntry `json:"entries,omitempty"`
}

type ytDlpEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

// Client invokes the yt-dlp binary.
type Client struct {
	// BinaryPath is the path to the yt-dlp executable. Defaults to "yt-dlp".
	BinaryPath string

	logger *log.Logger

	// retrySleep overrides the backoff base, used by tests.
	retrySleep time.Duration
}

// NewClient creates a Client, verifying that yt-dlp is available on PATH.
func NewClient(logger *log.Logger) (*Client, error) {
	path, err := exec.LookPath("yt-dlp")
	if err != nil {
		return nil, &ProbeError{
			Message:  "yt-dlp not found in PATH",
			Original: err,
		}
	}
	return &Client{
		BinaryPath: path,
		logger:     logger,
		retrySleep: time.Second,
	}, nil
}

func (c *Client) binary() string {
	if c.BinaryPath != "" {
		return c.BinaryPath
	}
	return "yt-dlp"
}

// Probe extracts playlist metadata without downloading anything.
func (c *Client) Probe(ctx context.Context, url string) (*PlaylistInfo, error) {
	args := []string{
		"--quiet",
		"--no-warnings",
		"--flat-playlist",
		"-J",
		url,
	}

	cmd := exec.CommandContext(ctx, c.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &ProbeError{
			Message:  fmt.Sprintf("yt-dlp probe failed for %s: %s", url, strings.TrimSpace(stderr.String())),
			Original: err,
		}
	}

	var raw ytDlpPlaylist
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return nil, &ProbeError{
			Message:  "failed to parse yt-dlp probe output",
			Original: err,
		}
	}

	info := &PlaylistInfo{
		ID:       raw.ID,
		Title:    raw.Title,
		Uploader: raw.Uploader,
	}
	if info.Uploader == "" {
		info.Uploader = raw.Channel
	}

	if len(raw.Entries) == 0 {
		// A bare video URL: treat it as a one-entry playlist.
		if raw.ID == "" {
			return nil, &ProbeError{Message: fmt.Sprintf("no entries found for %s", url)}
		}
		info.Entries = []Entry{{ID: raw.ID, Title: raw.Title, URL: url}}
		return info, nil
	}

	for i, e := range raw.Entries {
		entry := Entry{
			ID:    e.ID,
			Title: e.Title,
			URL:   e.URL,
			Index: i + 1,
		}
		if entry.URL == "" && entry.ID != "" {
			entry.URL = fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.ID)
		}
		info.Entries = append(info.Entries, entry)
	}

	return info, nil
}

// Download fetches every non-excluded entry of req sequentially, converting
// to MP3 and retrieving the thumbnail. Per-item failures are recorded in
// the returned items, never returned as an error.
func (c *Client) Download(ctx context.Context, req Request) ([]Item, error) {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, &DownloadError{
			Message:  fmt.Sprintf("failed to create output directory: %s", req.OutputDir),
			Original: err,
		}
	}

	items := make([]Item, 0, len(req.Entries))
	for _, entry := range req.Entries {
		item := Item{ID: entry.ID, Title: entry.Title, Index: entry.Index}

		if req.Exclude != nil && req.Exclude(entry.ID) {
			item.Skipped = true
			items = append(items, item)
			continue
		}

		if req.Limiter != nil {
			if err := req.Limiter.Wait(ctx); err != nil {
				item.Err = err
				items = append(items, item)
				continue
			}
		}

		path, err := c.downloadEntry(ctx, entry, req)
		if err != nil {
			item.Err = err
			items = append(items, item)
			continue
		}
		item.Path = path
		item.Thumbnail = c.collectThumbnail(path)
		items = append(items, item)
	}

	return items, nil
}

// downloadEntry runs yt-dlp for a single entry with retry on transient
// failures.
func (c *Client) downloadEntry(ctx context.Context, entry Entry, req Request) (string, error) {
	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	template := "%(title)s.%(ext)s"
	if entry.Index > 0 {
		template = fmt.Sprintf("%d - %%(title)s.%%(ext)s", entry.Index)
	}

	args := []string{
		"--quiet",
		"--no-warnings",
		"--no-playlist",
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", req.Quality,
		"--write-thumbnail",
		"--convert-thumbnails", "jpg",
		"--socket-timeout", "30",
		"--output", filepath.Join(req.OutputDir, template),
		"--print", "after_move:filepath",
		entry.URL,
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		cmd := exec.CommandContext(ctx, c.binary(), args...)
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		err := cmd.Run()
		if err == nil {
			path := lastLine(stdout.String())
			if path == "" {
				return "", &DownloadError{Message: fmt.Sprintf("no output file reported for %s", entry.URL)}
			}
			if _, statErr := os.Stat(path); statErr != nil {
				return "", &DownloadError{
					Message:  fmt.Sprintf("file not found after download: %s", path),
					Original: statErr,
				}
			}
			return path, nil
		}

		errText := strings.TrimSpace(stderr.String())
		lastErr = &DownloadError{
			Message:  fmt.Sprintf("yt-dlp failed for %s: %s", entry.URL, errText),
			Original: err,
		}
		if !isTransient(errText) {
			return "", lastErr
		}
		if attempt < maxRetries {
			wait := time.Duration(1<<uint(attempt)) * c.backoffBase()
			c.logger.Warn("retrying download",
				"url", entry.URL,
				"attempt", attempt,
				"max_retries", maxRetries,
				"wait", wait,
				"error", errText)
			time.Sleep(wait)
		}
	}

	return "", lastErr
}

func (c *Client) backoffBase() time.Duration {
	if c.retrySleep > 0 {
		return c.retrySleep
	}
	return time.Second
}

// collectThumbnail reads and removes the sidecar thumbnail yt-dlp wrote
// next to the audio file. A missing thumbnail is not an error.
func (c *Client) collectThumbnail(audioPath string) []byte {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	for _, ext := range []string{".jpg", ".webp", ".png"} {
		candidate := base + ext
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if err := os.Remove(candidate); err != nil {
			c.logger.Debug("failed to remove thumbnail sidecar", "path", candidate, "error", err)
		}
		return data
	}
	return nil
}

// isTransient reports whether a yt-dlp failure looks network-related and
// worth retrying.
func isTransient(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, marker := range []string{
		"timeout", "timed out", "connection", "network", "reset",
		"socket", "ssl", "429", "rate limit",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
