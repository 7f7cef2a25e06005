package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/pkeller/ytmwatch/config"
)

// resolveVia runs resolveSettings through a real flag parse.
func resolveVia(t *testing.T, args []string) (config.Settings, error) {
	t.Helper()
	var settings config.Settings
	var resolveErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: watchCommand().Flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			settings, resolveErr = resolveSettings(c)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("Command run failed: %v", err)
	}
	return settings, resolveErr
}

func TestResolveSettings_Defaults(t *testing.T) {
	s, err := resolveVia(t, []string{"-f", "playlists.txt"})
	if err != nil {
		t.Fatalf("resolveSettings() failed: %v", err)
	}
	if s.PlaylistFile != "playlists.txt" {
		t.Errorf("Playlist file not set: %q", s.PlaylistFile)
	}
	if s.OutputDir != "/downloads" || s.Quality != "320k" || s.MaxRetries != 3 {
		t.Errorf("Defaults not applied: %+v", s)
	}
}

func TestResolveSettings_FlagsBeatConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "output_dir: /music\nquality: \"0\"\nmax_retries: 5\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := resolveVia(t, []string{"-f", "p.txt", "-c", cfgPath, "-o", "/flags"})
	if err != nil {
		t.Fatalf("resolveSettings() failed: %v", err)
	}
	if s.OutputDir != "/flags" {
		t.Errorf("Flag should beat config file, got %q", s.OutputDir)
	}
	if s.Quality != "0" || s.MaxRetries != 5 {
		t.Errorf("Config file values not applied: %+v", s)
	}
}

func TestResolveSettings_EnvBeatsConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("quality: \"128k\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MP3_QUALITY", "0")
	t.Setenv("RATE_LIMIT", "1")

	s, err := resolveVia(t, []string{"-f", "p.txt", "-c", cfgPath})
	if err != nil {
		t.Fatalf("resolveSettings() failed: %v", err)
	}
	if s.Quality != "0" {
		t.Errorf("Env should beat config file, got %q", s.Quality)
	}
	if !s.RateLimit {
		t.Error("RATE_LIMIT=1 should enable rate limiting")
	}
}

func TestResolveSettings_WatchInterval(t *testing.T) {
	s, err := resolveVia(t, []string{"-f", "p.txt", "--interval", "60"})
	if err != nil {
		t.Fatalf("resolveSettings() failed: %v", err)
	}
	if s.PollInterval != 60 {
		t.Errorf("Expected interval 60, got %d", s.PollInterval)
	}
}

func TestResolveSettings_BadConfigFile(t *testing.T) {
	_, err := resolveVia(t, []string{"-f", "p.txt", "-c", filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
	if _, ok := err.(*config.ConfigError); !ok {
		t.Errorf("Expected *config.ConfigError, got %T", err)
	}
}

func TestMaintainAction_RequiresExactlyOneOperation(t *testing.T) {
	dir := t.TempDir()

	cmd := maintainCommand()
	err := cmd.Run(context.Background(), []string{"maintain", dir})
	if err == nil {
		t.Fatal("Expected error when no operation selected")
	}

	cmd = maintainCommand()
	err = cmd.Run(context.Background(), []string{"maintain", "--clean-empty", "--replaygain", dir})
	if err == nil {
		t.Fatal("Expected error when multiple operations selected")
	}
}

func TestMaintainAction_RejectsMissingDir(t *testing.T) {
	cmd := maintainCommand()
	err := cmd.Run(context.Background(), []string{"maintain", "--clean-empty", filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
}
