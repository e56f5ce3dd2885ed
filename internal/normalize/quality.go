package normalize

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// qualityScore combines a contrast metric (normalized luminance standard
// deviation) with an edge-density sharpness proxy, averaged and clamped to
// [0,1]. Large images are sampled on a grid to keep scoring cheap.
func qualityScore(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	stepX, stepY := 1, 1
	const maxSamplesPerAxis = 256
	if w > maxSamplesPerAxis {
		stepX = w / maxSamplesPerAxis
	}
	if h > maxSamplesPerAxis {
		stepY = h / maxSamplesPerAxis
	}

	var sum, sumSq float64
	var edges, samples int
	prev := -1
	for y := 0; y < h; y += stepY {
		prev = -1
		for x := 0; x < w; x += stepX {
			r, _, _, _ := gray.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := int(r >> 8)
			sum += float64(v)
			sumSq += float64(v) * float64(v)
			samples++
			if prev >= 0 && abs(v-prev) > 30 {
				edges++
			}
			prev = v
		}
	}
	if samples == 0 {
		return 0
	}

	mean := sum / float64(samples)
	variance := sumSq/float64(samples) - mean*mean
	if variance < 0 {
		variance = 0
	}
	// A stddev of 64 over the 0-255 range is already strong contrast.
	contrast := math.Sqrt(variance) / 64.0
	sharpness := float64(edges) / float64(samples) * 10.0

	return clamp01((clamp01(contrast) + clamp01(sharpness)) / 2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
