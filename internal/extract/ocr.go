package extract

import (
	"context"
	"image"
	"os"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"

	"github.com/backmassage/fundusort/internal/identity"
	"github.com/backmassage/fundusort/internal/ocr"
)

// OCRStrategy transcribes the scan under several preprocessing variants and
// pattern-scans each transcription independently; different preprocessing
// reveals different glyphs. The whole pass runs under one timeout — the
// engine call is cgo and cannot be interrupted, so on timeout the result is
// simply abandoned.
type OCRStrategy struct {
	Engine  ocr.Engine
	Timeout time.Duration
}

func (s *OCRStrategy) Name() string { return "ocr" }

func (s *OCRStrategy) Extract(ctx context.Context, path string, id *identity.Identity) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	ch := make(chan identity.Identity, 1)
	go func() { ch <- s.scan(path) }()

	select {
	case <-ctx.Done():
		id.Note("ocr: %v", ctx.Err())
	case partial := <-ch:
		id.Notes = append(id.Notes, partial.Notes...)
		id.Merge(partial.Name, partial.Date)
	}
}

// scan decodes the image once and OCRs every preprocessing variant,
// accumulating per-variant text in the trace even when a later variant
// contributes no new field.
func (s *OCRStrategy) scan(path string) identity.Identity {
	var out identity.Identity

	f, err := os.Open(path)
	if err != nil {
		out.Note("ocr: open: %v", err)
		return out
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		out.Note("ocr: decode: %v", err)
		return out
	}

	for _, v := range ocr.Variants(img) {
		pngBytes, err := ocr.EncodePNG(v.Image)
		if err != nil {
			out.Note("ocr %s: encode: %v", v.Name, err)
			continue
		}
		text, err := s.Engine.Recognize(pngBytes)
		if err != nil {
			out.Note("ocr %s: %v", v.Name, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		out.Note("ocr %s: %s", v.Name, snippet(text))
		out.Merge(identity.NameFromText(text), identity.DateFromText(text))
	}
	return out
}
