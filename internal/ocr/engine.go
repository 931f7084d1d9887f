// Package ocr wraps the Tesseract engine and the image preprocessing
// variants fed to it. Different preprocessing reveals different glyphs on
// low-contrast scans, so callers OCR every variant and scan each
// transcription independently.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Engine turns image bytes into a best-effort transcription. An empty string
// is a valid result; implementations return errors only for engine-level
// failures, never for "no text found".
type Engine interface {
	Recognize(png []byte) (string, error)
}

// Tesseract is the production [Engine] backed by gosseract. A fresh client
// is created per call: gosseract clients are not safe for concurrent use and
// the extraction pipeline runs strategies from multiple workers.
type Tesseract struct {
	// Languages passed to tesseract, e.g. ["chi_sim", "eng"].
	Languages []string
}

// NewTesseract returns an engine recognizing the given languages.
func NewTesseract(languages ...string) *Tesseract {
	if len(languages) == 0 {
		languages = []string{"chi_sim", "eng"}
	}
	return &Tesseract{Languages: languages}
}

// Recognize runs tesseract over the PNG-encoded image.
func (t *Tesseract) Recognize(pngBytes []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(pngBytes); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("set page seg mode: %w", err)
	}
	if err := client.SetLanguage(t.Languages...); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

// EncodePNG serializes an image for [Engine.Recognize].
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
