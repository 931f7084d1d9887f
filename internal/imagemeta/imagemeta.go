// Package imagemeta inspects candidate image files before extraction: basic
// sanity (exists, non-empty, decodable header) plus the timestamp sources the
// metadata strategy draws on. A single stat+header read per file replaces
// repeated ad-hoc checks inside the strategies.
package imagemeta

import (
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
)

// Sentinel errors for input validation.
var (
	ErrEmptyFile = errors.New("file is empty")
	ErrNotImage  = errors.New("not a decodable image")
)

// Info holds the probe result for one file.
type Info struct {
	Path      string
	Format    string // decoder name: "jpeg", "png", "gif", "bmp"
	Width     int
	Height    int
	SizeBytes int64
	ModTime   time.Time
}

// Probe stats the file and decodes its image header. It does not decode
// pixel data, so it is cheap enough to run on every candidate.
func Probe(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrNotImage, err)
	}

	return &Info{
		Path:      path,
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: fi.Size(),
		ModTime:   fi.ModTime(),
	}, nil
}

// CaptureTime returns the EXIF capture timestamp (DateTimeOriginal, falling
// back to DateTime). For scanned photographs this is far closer to the exam
// date than any filesystem timestamp, so the metadata strategy consults it
// first. Returns an error when the file has no usable EXIF block; most PNG
// and BMP scans won't have one.
func CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode exif: %w", err)
	}
	return x.DateTime()
}
