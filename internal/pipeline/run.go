package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Orchestrator validates the folder argument, drives collection and the
// per-file renames across a bounded worker pool, and assembles the batch
// result. Outcomes are reported in collection order regardless of which
// worker finished first.
type Orchestrator struct {
	extractor IdentityExtractor
	workers   int
	log       *zap.Logger
}

// NewOrchestrator builds an orchestrator running at most workers renames
// concurrently. Values below 1 are clamped to sequential processing.
func NewOrchestrator(extractor IdentityExtractor, workers int, log *zap.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{extractor: extractor, workers: workers, log: log}
}

// Run processes every supported image under folder. Only folder-level
// validation aborts the run; per-file errors are carried in the outcome
// list and the batch still reports Success=true ("the batch ran to
// completion").
func (o *Orchestrator) Run(ctx context.Context, folder string, opts Options) BatchResult {
	batchID := uuid.NewString()
	log := o.log.With(zap.String("batch_id", batchID))

	fi, err := os.Stat(folder)
	if err != nil {
		log.Warn("folder validation failed", zap.String("folder", folder), zap.Error(err))
		return BatchResult{BatchID: batchID, Error: fmt.Sprintf("%s: %s", ErrFolderNotFound, folder)}
	}
	if !fi.IsDir() {
		return BatchResult{BatchID: batchID, Error: fmt.Sprintf("%s: %s", ErrNotADirectory, folder)}
	}

	files, err := Collect(folder, opts.Recursive)
	if err != nil {
		return BatchResult{BatchID: batchID, Error: fmt.Sprintf("collect files: %v", err)}
	}
	if len(files) == 0 {
		return BatchResult{BatchID: batchID, Error: ErrNoImages.Error()}
	}

	log.Info("batch started",
		zap.String("folder", folder),
		zap.Int("files", len(files)),
		zap.Int("workers", o.workers),
		zap.Bool("recursive", opts.Recursive))

	// A fresh renamer per batch: collision claims must not leak between
	// runs, or a later batch would dodge target names that are long free.
	renamer := NewRenamer(o.extractor, log)

	// Workers write into a pre-sized slice by index, which preserves
	// collection order in the report no matter the completion order.
	outcomes := make([]Outcome, len(files))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = renamer.RenameOne(ctx, files[i], opts.Overwrite)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result := BatchResult{
		Success:    true,
		BatchID:    batchID,
		TotalFiles: len(files),
		Files:      outcomes,
	}
	for _, oc := range outcomes {
		if oc.Status == StatusSuccess {
			result.SuccessFiles++
		} else {
			result.ErrorFiles++
		}
	}

	log.Info("batch finished",
		zap.Int("total", result.TotalFiles),
		zap.Int("succeeded", result.SuccessFiles),
		zap.Int("failed", result.ErrorFiles))
	return result
}
