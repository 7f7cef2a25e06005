package engine

import "fmt"

// ProbeError represents a playlist metadata extraction error.
type ProbeError struct {
	Message  string
	Original error
}

func (e *ProbeError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Playlist probe error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Playlist probe error: %s", e.Message)
}

func (e *ProbeError) Unwrap() error {
	return e.Original
}

// DownloadError represents an item download error.
type DownloadError struct {
	Message  string
	Original error
}

func (e *DownloadError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Download error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Download error: %s", e.Message)
}

func (e *DownloadError) Unwrap() error {
	return e.Original
}
