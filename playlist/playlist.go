// Package playlist parses the playlist source file into descriptors.
package playlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Descriptor is one parsed playlist entry. Album and Artist may be empty,
// in which case they are resolved later from extracted metadata.
type Descriptor struct {
	Album  string
	Artist string
	URL    string
}

// Warning reports a malformed line that was skipped.
type Warning struct {
	Line    int
	Text    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s (%q)", w.Line, w.Message, w.Text)
}

// Parse reads playlist entries from r. Supported line shapes:
//
//	Album|Artist|URL
//	Album|URL
//	URL
//
// Blank lines and lines starting with # are skipped. Malformed lines
// (empty URL) are returned as warnings, never as an error.
func Parse(r io.Reader) ([]Descriptor, []Warning) {
	var entries []Descriptor
	var warnings []Warning

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "|")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		var d Descriptor
		switch {
		case len(parts) >= 3:
			// Extra segments are rejoined into the URL so a URL that
			// happens to contain | survives.
			d = Descriptor{
				Album:  parts[0],
				Artist: parts[1],
				URL:    strings.TrimSpace(strings.Join(parts[2:], "|")),
			}
		case len(parts) == 2:
			d = Descriptor{Album: parts[0], URL: parts[1]}
		default:
			d = Descriptor{URL: parts[0]}
		}

		if d.URL == "" {
			warnings = append(warnings, Warning{
				Line:    lineNo,
				Text:    line,
				Message: "missing URL",
			})
			continue
		}
		entries = append(entries, d)
	}

	return entries, warnings
}

// ParseFile parses the playlist file at path.
func ParseFile(path string) ([]Descriptor, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open playlist file: %w", err)
	}
	defer f.Close()

	entries, warnings := Parse(f)
	return entries, warnings, nil
}
