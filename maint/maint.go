// Package maint implements on-demand maintenance of already-downloaded
// album directories: tag cleanup, album tag rewriting, and loudness
// normalization. It never touches the download archive.
package maint

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// ListMP3s returns the MP3 files directly inside dir, sorted by name.
func ListMP3s(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no MP3 files found in %s", dir)
	}
	return files, nil
}

// CleanEmptyFrames removes ID3 text frames whose content is empty after
// trimming, leaving picture frames alone. Returns the number of files
// changed.
func CleanEmptyFrames(dir string) (int, error) {
	files, err := ListMP3s(dir)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, f := range files {
		tag, err := id3v2.Open(f, id3v2.Options{Parse: true})
		if err != nil {
			return changed, fmt.Errorf("failed to open %s: %w", f, err)
		}

		var toDelete []string
		for id, frames := range tag.AllFrames() {
			if id == tag.CommonID("APIC") {
				continue
			}
			for _, frame := range frames {
				tf, ok := frame.(id3v2.TextFrame)
				if ok && strings.TrimSpace(tf.Text) == "" {
					toDelete = append(toDelete, id)
					break
				}
			}
		}

		if len(toDelete) > 0 {
			for _, id := range toDelete {
				tag.DeleteFrames(id)
			}
			if err := tag.Save(); err != nil {
				tag.Close()
				return changed, fmt.Errorf("failed to save %s: %w", f, err)
			}
			changed++
		}
		tag.Close()
	}

	return changed, nil
}

// SetAlbumFromFolder sets album and album artist on every MP3 in dir to
// the directory's base name. Returns the number of files written.
func SetAlbumFromFolder(dir string) (int, error) {
	files, err := ListMP3s(dir)
	if err != nil {
		return 0, err
	}

	album := filepath.Base(dir)
	for _, f := range files {
		tag, err := id3v2.Open(f, id3v2.Options{Parse: true})
		if err != nil {
			return 0, fmt.Errorf("failed to open %s: %w", f, err)
		}
		tag.SetDefaultEncoding(id3v2.EncodingUTF8)
		tag.SetAlbum(album)
		tag.AddTextFrame(tag.CommonID("TPE2"), id3v2.EncodingUTF8, album)
		if err := tag.Save(); err != nil {
			tag.Close()
			return 0, fmt.Errorf("failed to save %s: %w", f, err)
		}
		tag.Close()
	}

	return len(files), nil
}

// ReplayGain computes and writes loudness metadata for every MP3 in dir,
// preferring rsgain and falling back to mp3gain. Returns the tool used.
func ReplayGain(ctx context.Context, dir string) (string, error) {
	files, err := ListMP3s(dir)
	if err != nil {
		return "", err
	}

	if path, err := exec.LookPath("rsgain"); err == nil {
		return "rsgain", runTool(ctx, path, []string{"easy", dir})
	}
	if path, err := exec.LookPath("mp3gain"); err == nil {
		args := append([]string{"-a"}, files...)
		return "mp3gain", runTool(ctx, path, args)
	}
	return "", fmt.Errorf("neither rsgain nor mp3gain found in PATH")
}

func runTool(ctx context.Context, path string, args []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w (output: %s)", filepath.Base(path), err, strings.TrimSpace(string(output)))
	}
	return nil
}
