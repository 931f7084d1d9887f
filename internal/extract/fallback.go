package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/fundusort/internal/identity"
	"github.com/backmassage/fundusort/internal/imagemeta"
)

// FilenameStrategy parses the filename stem with the structured
// name+date rules, falling back to a leading ideographic run.
type FilenameStrategy struct{}

func (FilenameStrategy) Name() string { return "filename" }

func (FilenameStrategy) Extract(_ context.Context, path string, id *identity.Identity) {
	name, date := identity.ParseFilename(stem(path))
	if name != "" || date != "" {
		id.Note("filename: name=%q date=%q", name, date)
	}
	id.Merge(name, date)
}

// MetadataStrategy is the final fallback. The date comes from EXIF capture
// time when present, else the file's modification time (Go exposes no
// portable creation time; for scans copied off a camera card the mtime is
// usually the scan time anyway). The name, if still missing, is the raw
// filename stem — this strategy must leave the identity with some name so a
// file is never silently dropped.
type MetadataStrategy struct{}

func (MetadataStrategy) Name() string { return "metadata" }

func (MetadataStrategy) Extract(_ context.Context, path string, id *identity.Identity) {
	if id.Date == "" {
		if t, err := imagemeta.CaptureTime(path); err == nil {
			id.Note("metadata: exif capture time")
			id.Merge("", t.Format("20060102"))
		} else if fi, err := os.Stat(path); err == nil {
			id.Note("metadata: file mtime")
			id.Merge("", fi.ModTime().Format("20060102"))
		} else {
			id.Note("metadata: stat: %v", err)
		}
	}
	if id.Name == "" {
		id.Note("metadata: name from stem")
		id.Merge(stem(path), "")
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
