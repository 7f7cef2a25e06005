// Package archive persists the set of already-downloaded item identifiers.
//
// The backing file holds one opaque identifier per line and is safe to edit
// by hand between watchdog cycles; the store is reloaded at the start of
// every orchestration pass.
package archive

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is an append-only identifier set backed by a text file.
type Store struct {
	path string
	ids  map[string]struct{}
}

// Load reads the archive file at path into memory. A missing file yields an
// empty store; the file is created on the first Append.
func Load(path string) (*Store, error) {
	s := &Store{
		path: path,
		ids:  make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to open archive file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id == "" {
			continue
		}
		s.ids[id] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read archive file: %w", err)
	}

	return s, nil
}

// Contains reports whether id has been recorded.
func (s *Store) Contains(id string) bool {
	_, ok := s.ids[strings.TrimSpace(id)]
	return ok
}

// Append records id durably. Appending an already-recorded id is a no-op,
// so the file never grows duplicate lines. The write is flushed to disk
// before Append returns.
func (s *Store) Append(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("empty archive identifier")
	}
	if _, ok := s.ids[id]; ok {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, id); err != nil {
		return fmt.Errorf("failed to append to archive file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to flush archive file: %w", err)
	}

	s.ids[id] = struct{}{}
	return nil
}

// Len returns the number of recorded identifiers.
func (s *Store) Len() int {
	return len(s.ids)
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}
