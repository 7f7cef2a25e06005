// Package report persists per-pass run reports as JSON files with a
// retention cap, so watchdog history survives restarts and can be
// inspected while the daemon runs.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// PassReport summarizes one orchestration pass.
type PassReport struct {
	RunID       string     `json:"run_id"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Playlists        int `json:"playlists"`
	PlaylistFailures int `json:"playlist_failures"`
	Downloaded       int `json:"downloaded"`
	Skipped          int `json:"skipped"`
	ItemFailures     int `json:"item_failures"`
	TagFailures      int `json:"tag_failures"`

	Errors []string `json:"errors,omitempty"`
}

// ToJSON converts the report to indented JSON.
func (r *PassReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON fills the report from JSON bytes.
func (r *PassReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}

// Recorder writes pass reports under a directory, pruning old ones past
// the retention limit.
type Recorder struct {
	dir       string
	retention int
}

// NewRecorder creates a recorder writing into dir. retention <= 0 disables
// pruning.
func NewRecorder(dir string, retention int) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &Recorder{dir: dir, retention: retention}, nil
}

// Record writes the report to run_<id>.json and prunes old runs.
func (rec *Recorder) Record(r *PassReport) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	path := filepath.Join(rec.dir, fmt.Sprintf("run_%s.json", r.RunID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write pass report: %w", err)
	}

	if rec.retention > 0 {
		return rec.prune()
	}
	return nil
}

// Get loads a report by run ID.
func (rec *Recorder) Get(runID string) (*PassReport, error) {
	data, err := os.ReadFile(filepath.Join(rec.dir, fmt.Sprintf("run_%s.json", runID)))
	if err != nil {
		return nil, err
	}
	var r PassReport
	if err := r.FromJSON(data); err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns all run IDs, newest first.
func (rec *Recorder) List() ([]string, error) {
	entries, err := os.ReadDir(rec.dir)
	if err != nil {
		return nil, err
	}

	type runInfo struct {
		id        string
		startedAt time.Time
	}
	var runs []runInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "run_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "run_"), ".json")
		r, err := rec.Get(id)
		if err != nil {
			continue
		}
		runs = append(runs, runInfo{id: id, startedAt: r.StartedAt})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].startedAt.After(runs[j].startedAt)
	})

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.id
	}
	return ids, nil
}

// prune removes the oldest runs beyond the retention limit.
func (rec *Recorder) prune() error {
	ids, err := rec.List()
	if err != nil {
		return err
	}
	if len(ids) <= rec.retention {
		return nil
	}
	for _, id := range ids[rec.retention:] {
		path := filepath.Join(rec.dir, fmt.Sprintf("run_%s.json", id))
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove old report %s: %w", id, err)
		}
	}
	return nil
}
