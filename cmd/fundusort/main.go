// Command fundusort extracts patient name and exam date from medical scan
// images and renames them to <name>_<YYYYMMDD>. It serves the batch
// operation over HTTP by default; -folder runs one batch directly and
// prints the JSON result, --check runs system diagnostics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/check"
	"github.com/backmassage/fundusort/internal/config"
	"github.com/backmassage/fundusort/internal/extract"
	"github.com/backmassage/fundusort/internal/handler"
	"github.com/backmassage/fundusort/internal/logging"
	"github.com/backmassage/fundusort/internal/ocr"
	"github.com/backmassage/fundusort/internal/pipeline"
	"github.com/backmassage/fundusort/internal/server"
	"github.com/backmassage/fundusort/internal/vision"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	var (
		folder      = flag.String("folder", "", "process this folder once, print the JSON result, and exit")
		recursive   = flag.Bool("recursive", true, "include subfolders in -folder mode")
		checkOnly   = flag.Bool("check", false, "run system diagnostics and exit")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("fundusort " + version)
		return
	}

	log, err := logging.New(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fundusort: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("configuration failed", zap.Error(err))
	}

	vc := vision.New(vision.Options{
		BaseURL:        cfg.Vision.BaseURL,
		APIKey:         cfg.Vision.APIKey,
		Model:          cfg.Vision.Model,
		MaxImageWidth:  cfg.Vision.MaxImageWidth,
		RequestsPerSec: cfg.Vision.RequestsPerSec,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *checkOnly {
		if err := check.RunCheck(ctx, cfg, vc, log); err != nil {
			os.Exit(1)
		}
		return
	}

	// Unreachable inference is a warning, not a startup failure: the
	// extraction chain degrades to OCR and filename strategies.
	if _, err := check.CheckInference(ctx, vc); err != nil {
		log.Warn("inference service unreachable, vision extraction will be skipped until it recovers",
			zap.String("base_url", cfg.Vision.BaseURL),
			zap.Error(err))
	}

	engine := ocr.NewTesseract(strings.Split(cfg.OCR.Languages, "+")...)
	extractor := extract.New(vc, engine, extract.Options{
		VisionTimeout: cfg.Vision.Timeout,
		OCRTimeout:    cfg.OCR.Timeout,
	}, log)
	orchestrator := pipeline.NewOrchestrator(extractor, cfg.Workers, log)

	if *folder != "" {
		runOnce(ctx, orchestrator, *folder, *recursive, log)
		return
	}

	srv := server.New(cfg, handler.New(orchestrator, vc, log), log)
	go func() {
		if err := srv.Run(); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

// runOnce executes one batch and prints the result the same way the HTTP
// endpoint would respond.
func runOnce(ctx context.Context, o *pipeline.Orchestrator, folder string, recursive bool, log *zap.Logger) {
	opts := pipeline.DefaultOptions()
	opts.Recursive = recursive

	result := o.Run(ctx, folder, opts)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal("encode result", zap.Error(err))
	}
	fmt.Println(string(out))
	if !result.Success {
		os.Exit(1)
	}
}
