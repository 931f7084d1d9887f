// Package extract recovers a (name, date) identity for one image file by
// running an ordered chain of strategies: vision-language inference, OCR,
// filename heuristics, and file metadata. Later strategies only fill fields
// earlier ones left empty; the chain never fails, it only degrades.
package extract

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/identity"
	"github.com/backmassage/fundusort/internal/imagemeta"
	"github.com/backmassage/fundusort/internal/ocr"
	"github.com/backmassage/fundusort/internal/vision"
)

// Strategy is one self-contained method of recovering identity parts from a
// file. Implementations merge whatever they find into id (never overwriting
// fields already set — [identity.Identity.Merge] enforces this) and absorb
// their own failures into the diagnostic trace.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path string, id *identity.Identity)
}

// entry pairs a strategy with whether it needs readable image content.
// Strategies that do are skipped when the upfront probe already failed,
// saving a doomed upload or decode.
type entry struct {
	strategy   Strategy
	needsImage bool
}

// Options tunes the chain.
type Options struct {
	// VisionTimeout bounds one inference round-trip. Default 30s.
	VisionTimeout time.Duration
	// OCRTimeout bounds the whole OCR pass (all preprocessing variants).
	// Default 30s.
	OCRTimeout time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.VisionTimeout <= 0 {
		out.VisionTimeout = 30 * time.Second
	}
	if out.OCRTimeout <= 0 {
		out.OCRTimeout = 30 * time.Second
	}
	return out
}

// Extractor drives the fixed-priority strategy chain.
type Extractor struct {
	chain []entry
	log   *zap.Logger
}

// New wires the chain in its fixed priority order. Both clients are injected
// so tests can substitute stubs; neither is probed for liveness here.
func New(vc vision.Client, engine ocr.Engine, opts Options, log *zap.Logger) *Extractor {
	o := opts.withDefaults()
	return &Extractor{
		chain: []entry{
			{&VisionStrategy{Client: vc, Timeout: o.VisionTimeout}, true},
			{&OCRStrategy{Engine: engine, Timeout: o.OCRTimeout}, true},
			{FilenameStrategy{}, false},
			{MetadataStrategy{}, false},
		},
		log: log,
	}
}

// Extract runs the chain for one file. It never returns an error: every
// internal failure is recorded in the trace and the next strategy tried.
// The result always carries a non-empty name (the metadata strategy
// guarantees it); the date can only be empty if every source including file
// timestamps was unreadable.
func (x *Extractor) Extract(ctx context.Context, path string) identity.Identity {
	var id identity.Identity

	info, probeErr := imagemeta.Probe(path)
	if probeErr != nil {
		id.Note("probe: %v", probeErr)
	} else {
		id.Note("probe: %s %dx%d", info.Format, info.Width, info.Height)
	}

	for _, e := range x.chain {
		if id.Complete() {
			break
		}
		if e.needsImage && probeErr != nil {
			continue
		}
		e.strategy.Extract(ctx, path, &id)
	}

	x.log.Debug("identity extracted",
		zap.String("path", path),
		zap.String("name", id.Name),
		zap.String("date", id.Date),
		zap.Strings("trace", id.Notes))
	return id
}
