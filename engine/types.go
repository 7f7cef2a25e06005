package engine

import "golang.org/x/time/rate"

// PlaylistInfo is the metadata yt-dlp reports for a playlist. Single video
// URLs are normalized to a one-entry playlist.
type PlaylistInfo struct {
	ID       string
	Title    string
	Uploader string
	Entries  []Entry
}

// Entry is one item of a probed playlist. Index is the 1-based playlist
// position.
type Entry struct {
	ID    string
	Title string
	URL   string
	Index int
}

// Request configures one playlist download.
type Request struct {
	Entries    []Entry
	OutputDir  string
	Quality    string
	MaxRetries int

	// Exclude is consulted for every entry before it is fetched; entries
	// for which it returns true are reported as skipped.
	Exclude func(id string) bool

	// Limiter, when set, paces item downloads.
	Limiter *rate.Limiter
}

// Item is the per-entry outcome of a download request. Exactly one of
// Skipped, Err, or a populated Path applies.
type Item struct {
	ID        string
	Title     string
	Index     int
	Path      string
	Thumbnail []byte
	Skipped   bool
	Err       error
}
