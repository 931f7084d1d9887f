package ocr

import (
	"image"
	"image/color"
	"sort"
)

// Variant is one preprocessed rendering of the source image.
type Variant struct {
	Name  string
	Image *image.Gray
}

// Variants produces the fixed set of preprocessing renderings, in the order
// they are OCR'd: global Otsu threshold, Gaussian blur, adaptive threshold,
// median filter. All operate on the greyscale conversion of src.
func Variants(src image.Image) []Variant {
	gray := Grayscale(src)
	return []Variant{
		{"thresh", OtsuThreshold(gray)},
		{"blur", GaussianBlur(gray)},
		{"adaptive", AdaptiveThreshold(gray, 11, 2)},
		{"median", MedianFilter(gray)},
	}
}

// Grayscale converts any image to 8-bit greyscale.
func Grayscale(src image.Image) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

// OtsuThreshold binarizes using the global threshold that maximizes
// between-class variance over the intensity histogram.
func OtsuThreshold(g *image.Gray) *image.Gray {
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	total := len(g.Pix)

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVar float64
	threshold := 0
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVar {
			maxVar = between
			threshold = i
		}
	}

	return binarize(g, uint8(threshold))
}

func binarize(g *image.Gray, threshold uint8) *image.Gray {
	dst := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		if v > threshold {
			dst.Pix[i] = 255
		}
	}
	return dst
}

// gaussKernel is the separable 5-tap binomial approximation of a Gaussian.
var gaussKernel = [5]int{1, 4, 6, 4, 1} // weights sum to 16 per pass

// GaussianBlur applies a 5x5 Gaussian as two separable passes. Edges clamp
// to the nearest pixel.
func GaussianBlur(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewGray(b)
	dst := image.NewGray(b)

	// Horizontal pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += gaussKernel[k+2] * int(g.Pix[y*g.Stride+clamp(x+k, w)])
			}
			tmp.Pix[y*tmp.Stride+x] = uint8(sum / 16)
		}
	}
	// Vertical pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for k := -2; k <= 2; k++ {
				sum += gaussKernel[k+2] * int(tmp.Pix[clamp(y+k, h)*tmp.Stride+x])
			}
			dst.Pix[y*dst.Stride+x] = uint8(sum / 16)
		}
	}
	return dst
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// AdaptiveThreshold binarizes each pixel against the mean of its
// window x window neighborhood minus bias, using an integral image so the
// cost is independent of window size. window must be odd.
func AdaptiveThreshold(g *image.Gray, window, bias int) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)

	// integral[y][x] holds the sum of the rectangle [0,0)-(x,y).
	integral := make([]int, (w+1)*(h+1))
	stride := w + 1
	for y := 1; y <= h; y++ {
		rowSum := 0
		for x := 1; x <= w; x++ {
			rowSum += int(g.Pix[(y-1)*g.Stride+(x-1)])
			integral[y*stride+x] = integral[(y-1)*stride+x] + rowSum
		}
	}

	r := window / 2
	for y := 0; y < h; y++ {
		y0, y1 := clamp(y-r, h), clamp(y+r, h)
		for x := 0; x < w; x++ {
			x0, x1 := clamp(x-r, w), clamp(x+r, w)
			count := (x1 - x0 + 1) * (y1 - y0 + 1)
			sum := integral[(y1+1)*stride+(x1+1)] -
				integral[y0*stride+(x1+1)] -
				integral[(y1+1)*stride+x0] +
				integral[y0*stride+x0]
			if int(g.Pix[y*g.Stride+x])*count > sum-bias*count {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// MedianFilter applies a 3x3 median, removing salt-and-pepper noise that
// confuses glyph segmentation. Edges clamp to the nearest pixel.
func MedianFilter(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	win := make([]uint8, 0, 9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			win = win[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					win = append(win, g.Pix[clamp(y+dy, h)*g.Stride+clamp(x+dx, w)])
				}
			}
			sort.Slice(win, func(i, j int) bool { return win[i] < win[j] })
			dst.Pix[y*dst.Stride+x] = win[4]
		}
	}
	return dst
}
