// Package check provides system diagnostics (--check mode): tesseract
// availability and language data, and inference service reachability.
package check

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/config"
	"github.com/backmassage/fundusort/internal/vision"
)

// Sentinel errors for the individual checks.
var (
	ErrTesseractUnavailable = errors.New("tesseract is not usable")
	ErrLanguageMissing      = errors.New("tesseract language data missing")
	ErrServiceUnreachable   = errors.New("inference service unreachable")
)

const reachTimeout = 5 * time.Second

// RunCheck runs the full --check flow, logging each result. It does not stop
// on failure; the combined error (nil when everything passed) lets the
// caller pick an exit code.
func RunCheck(ctx context.Context, cfg *config.Config, vc vision.Client, log *zap.Logger) error {
	var failed []error

	if err := CheckTesseract(cfg.OCR.Languages); err != nil {
		log.Error("tesseract check failed", zap.Error(err))
		failed = append(failed, err)
	} else {
		log.Info("tesseract ok",
			zap.String("version", gosseract.Version()),
			zap.String("languages", cfg.OCR.Languages))
	}

	models, err := CheckInference(ctx, vc)
	if err != nil {
		log.Error("inference service check failed",
			zap.String("base_url", cfg.Vision.BaseURL),
			zap.Error(err))
		failed = append(failed, err)
	} else {
		log.Info("inference service ok",
			zap.String("base_url", cfg.Vision.BaseURL),
			zap.Strings("models", models))
		if !containsModel(models, cfg.Vision.Model) {
			log.Warn("configured model not in service's model list",
				zap.String("model", cfg.Vision.Model))
		}
	}

	return errors.Join(failed...)
}

// CheckTesseract verifies the tesseract library answers and that every
// language in the "+"-joined languages string has installed data.
func CheckTesseract(languages string) error {
	if gosseract.Version() == "" {
		return ErrTesseractUnavailable
	}
	available, err := gosseract.GetAvailableLanguages()
	if err != nil {
		return errors.Join(ErrTesseractUnavailable, err)
	}
	for _, want := range strings.Split(languages, "+") {
		found := false
		for _, have := range available {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return ErrLanguageMissing
		}
	}
	return nil
}

// CheckInference asks the service for its model list, doubling as a
// liveness probe.
func CheckInference(ctx context.Context, vc vision.Client) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, reachTimeout)
	defer cancel()

	models, err := vc.Models(ctx)
	if err != nil {
		return nil, errors.Join(ErrServiceUnreachable, err)
	}
	return models, nil
}

func containsModel(models []string, model string) bool {
	for _, m := range models {
		if m == model {
			return true
		}
	}
	return false
}
