package normalize

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	binarizeWindow = 15
	binarizeOffset = 10
)

// binarizeStep thresholds the image to pure black and white using an
// adaptive local mean: each pixel is compared against the mean of its
// surrounding window minus a constant offset. An integral image keeps the
// window sums O(1) per pixel.
func binarizeStep(img image.Image) (image.Image, float64, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, 0, errors.New("empty image")
	}

	gray := imaging.Grayscale(img)
	lum := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := gray.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum[y*w+x] = int(r >> 8)
		}
	}

	// Integral image: integral[y*stride+x] = sum of lum over [0,x) x [0,y).
	stride := w + 1
	integral := make([]int, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			rowSum += lum[y*w+x]
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	half := binarizeWindow / 2
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half+1, y+half+1
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 > w {
				x1 = w
			}
			if y1 > h {
				y1 = h
			}
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] -
				integral[y1*stride+x0] + integral[y0*stride+x0]
			mean := sum / ((x1 - x0) * (y1 - y0))
			threshold := mean - binarizeOffset
			var v uint8 = 255
			if lum[y*w+x] < threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out, 0.75, nil
}
