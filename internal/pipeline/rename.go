package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/identity"
)

// IdentityExtractor is what the renamer needs from the extraction chain.
type IdentityExtractor interface {
	Extract(ctx context.Context, path string) identity.Identity
}

// Renamer turns one file's extracted identity into a collision-safe rename.
// The resolve-and-rename step is serialized so two workers can never race a
// check-and-create on the same target.
type Renamer struct {
	extractor IdentityExtractor
	resolver  *Resolver
	renameMu  sync.Mutex
	log       *zap.Logger
}

// NewRenamer builds a renamer with a fresh collision resolver.
func NewRenamer(extractor IdentityExtractor, log *zap.Logger) *Renamer {
	return &Renamer{extractor: extractor, resolver: NewResolver(), log: log}
}

// RenameOne processes a single file and never fails past its own boundary:
// every error becomes an error outcome. The overwrite flag is accepted for
// interface compatibility, but an existing different file is never replaced
// — colliding targets always get a numeric suffix instead.
func (r *Renamer) RenameOne(ctx context.Context, path string, overwrite bool) Outcome {
	_ = overwrite
	original := filepath.Base(path)

	id := r.extractor.Extract(ctx, path)
	if !id.Complete() {
		return Outcome{OriginalName: original, Status: StatusError, Error: ErrIdentityIncomplete.Error()}
	}

	name := identity.SanitizeName(id.Name)
	if name == "" {
		return Outcome{OriginalName: original, Status: StatusError, Error: ErrIdentityIncomplete.Error()}
	}
	date := id.Date
	if !identity.IsCanonicalDate(date) {
		date = identity.NormalizeDate(date)
	}

	base := name + "_" + date
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)

	r.renameMu.Lock()
	defer r.renameMu.Unlock()

	target := r.resolver.Resolve(path, dir, base, ext)
	if target == path {
		r.log.Debug("rename not needed", zap.String("path", path))
		return Outcome{OriginalName: original, NewName: original, Status: StatusSuccess}
	}

	if err := os.Rename(path, target); err != nil {
		r.log.Warn("rename failed",
			zap.String("path", path),
			zap.String("target", target),
			zap.Error(err))
		return Outcome{OriginalName: original, Status: StatusError, Error: err.Error()}
	}

	r.log.Info("renamed",
		zap.String("from", original),
		zap.String("to", filepath.Base(target)))
	return Outcome{OriginalName: original, NewName: filepath.Base(target), Status: StatusSuccess}
}
