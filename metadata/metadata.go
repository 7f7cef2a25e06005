// Package metadata enforces library-organization tags on finished MP3s.
//
// Album and album artist are always hard-overwritten from the playlist
// descriptor (or extracted fallback), regardless of whatever tags the
// source track carried. Tag stability wins over source metadata.
package metadata

import (
	"fmt"

	"github.com/bogem/id3v2/v2"
)

// TagSet is the enforced metadata on a finished MP3.
type TagSet struct {
	Album       string
	AlbumArtist string
	Track       int
	Cover       []byte
}

// TagError represents a tag write error.
type TagError struct {
	Message  string
	Original error
}

func (e *TagError) Error() string {
	if e.Original != nil {
		return fmt.Sprintf("Tag error: %s: %v", e.Message, e.Original)
	}
	return fmt.Sprintf("Tag error: %s", e.Message)
}

func (e *TagError) Unwrap() error {
	return e.Original
}

// Writer writes TagSets into MP3 files.
type Writer struct{}

// NewWriter creates a new tag writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteTags applies ts to the MP3 at path, overwriting album and album
// artist, setting the track number when known, and replacing the embedded
// cover art when ts.Cover is present.
func (w *Writer) WriteTags(path string, ts TagSet) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		// No parseable ID3 tag yet; start a fresh one.
		tag, err = id3v2.Open(path, id3v2.Options{Parse: false})
		if err != nil {
			return &TagError{
				Message:  fmt.Sprintf("failed to open MP3 file: %s", path),
				Original: err,
			}
		}
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	tag.SetAlbum(ts.Album)
	tag.AddTextFrame(tag.CommonID("TPE2"), id3v2.EncodingUTF8, ts.AlbumArtist)

	if ts.Track > 0 {
		tag.AddTextFrame(tag.CommonID("TRCK"), id3v2.EncodingUTF8, fmt.Sprintf("%d", ts.Track))
	}

	if len(ts.Cover) > 0 {
		tag.DeleteFrames(tag.CommonID("APIC"))
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    sniffImageMIME(ts.Cover),
			PictureType: id3v2.PTFrontCover,
			Description: "Cover",
			Picture:     ts.Cover,
		})
	}

	if err := tag.Save(); err != nil {
		return &TagError{
			Message:  fmt.Sprintf("failed to save tags: %s", path),
			Original: err,
		}
	}
	return nil
}

// sniffImageMIME detects PNG by signature, defaulting to JPEG.
func sniffImageMIME(data []byte) string {
	if len(data) > 4 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	return "image/jpeg"
}
