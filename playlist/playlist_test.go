package playlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_ThreeFields(t *testing.T) {
	entries, warnings := Parse(strings.NewReader("Lo-Fi|Mix|https://example/pl1\n"))
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	d := entries[0]
	if d.Album != "Lo-Fi" || d.Artist != "Mix" || d.URL != "https://example/pl1" {
		t.Errorf("Unexpected descriptor: %+v", d)
	}
}

func TestParse_TwoFields(t *testing.T) {
	entries, _ := Parse(strings.NewReader("Chill|https://example/pl2\n"))
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	d := entries[0]
	if d.Album != "Chill" || d.Artist != "" || d.URL != "https://example/pl2" {
		t.Errorf("Unexpected descriptor: %+v", d)
	}
}

func TestParse_URLOnly(t *testing.T) {
	entries, _ := Parse(strings.NewReader("https://example/pl3\n"))
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	d := entries[0]
	if d.Album != "" || d.Artist != "" || d.URL != "https://example/pl3" {
		t.Errorf("Unexpected descriptor: %+v", d)
	}
}

func TestParse_CommentsAndBlanks(t *testing.T) {
	input := "# a comment\n\n   \n  # indented comment\nhttps://example/pl\n"
	entries, warnings := Parse(strings.NewReader(input))
	if len(warnings) != 0 {
		t.Fatalf("Expected no warnings, got %v", warnings)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
}

func TestParse_TrimsFields(t *testing.T) {
	entries, _ := Parse(strings.NewReader("  Album  |  Artist  |  https://example/pl  \n"))
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	d := entries[0]
	if d.Album != "Album" || d.Artist != "Artist" || d.URL != "https://example/pl" {
		t.Errorf("Fields not trimmed: %+v", d)
	}
}

func TestParse_URLWithPipe(t *testing.T) {
	entries, _ := Parse(strings.NewReader("Album|Artist|https://example/pl?a=1|b=2\n"))
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].URL != "https://example/pl?a=1|b=2" {
		t.Errorf("Expected rejoined URL, got %q", entries[0].URL)
	}
}

func TestParse_MissingURL(t *testing.T) {
	entries, warnings := Parse(strings.NewReader("Album|Artist|\nhttps://example/ok\n"))
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].URL != "https://example/ok" {
		t.Errorf("Wrong surviving entry: %+v", entries[0])
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Line != 1 {
		t.Errorf("Expected warning for line 1, got line %d", warnings[0].Line)
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "playlists.txt")
	content := "Lo-Fi|Mix|https://example/pl1\n#comment\nhttps://example/pl2\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write playlist file: %v", err)
	}

	entries, warnings, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[1].URL != "https://example/pl2" {
		t.Errorf("Unexpected second entry: %+v", entries[1])
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, _, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}
