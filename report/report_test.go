package report

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecordAndGet(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "runs"), 0)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	now := time.Now()
	r := &PassReport{
		RunID:       "abc",
		StartedAt:   now,
		CompletedAt: &now,
		Playlists:   2,
		Downloaded:  5,
		Skipped:     3,
	}
	if err := rec.Record(r); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	got, err := rec.Get("abc")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Playlists != 2 || got.Downloaded != 5 || got.Skipped != 3 {
		t.Errorf("Unexpected report: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not persisted")
	}
}

func TestList_NewestFirst(t *testing.T) {
	rec, err := NewRecorder(filepath.Join(t.TempDir(), "runs"), 0)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		r := &PassReport{
			RunID:     fmt.Sprintf("run%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := rec.Record(r); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	ids, err := rec.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(ids))
	}
	if ids[0] != "run2" || ids[2] != "run0" {
		t.Errorf("Expected newest-first order, got %v", ids)
	}
}

func TestRecord_Retention(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	rec, err := NewRecorder(dir, 2)
	if err != nil {
		t.Fatalf("NewRecorder() failed: %v", err)
	}

	base := time.Now()
	for i := 0; i < 4; i++ {
		r := &PassReport{
			RunID:     fmt.Sprintf("run%d", i),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := rec.Record(r); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	ids, err := rec.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("Expected retention to keep 2 runs, got %d", len(ids))
	}
	if ids[0] != "run3" || ids[1] != "run2" {
		t.Errorf("Wrong runs kept: %v", ids)
	}
	if _, err := os.Stat(filepath.Join(dir, "run_run0.json")); !os.IsNotExist(err) {
		t.Error("Oldest run should have been pruned")
	}
}
