package vision

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
)

// jpegQuality for re-encoded uploads. High enough to keep small print
// legible for the model.
const jpegQuality = 85

// shrink decodes, downscales to at most maxWidth (preserving aspect ratio),
// and re-encodes as JPEG. Images already narrow enough are re-encoded
// without resampling so the upload format is consistent.
func shrink(data []byte, maxWidth int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	if w := img.Bounds().Dx(); w > maxWidth {
		ratio := float64(img.Bounds().Dy()) / float64(w)
		img = resize.Resize(uint(maxWidth), uint(float64(maxWidth)*ratio), img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
