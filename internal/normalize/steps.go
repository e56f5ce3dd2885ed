package normalize

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// scaleStep resamples the image by the given factor using Lanczos
// interpolation. Factors <= 0 or == 1 leave the image untouched.
func scaleStep(img image.Image, factor float64) (image.Image, float64, error) {
	if factor <= 0 {
		return nil, 0, errors.New("scale factor must be positive")
	}
	if factor == 1.0 {
		return img, 1.0, nil
	}
	b := img.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 1 || h < 1 {
		return nil, 0, errors.New("scale factor collapses image")
	}
	return imaging.Resize(img, w, h, imaging.Lanczos), 0.9, nil
}

// grayscaleStep collapses the channels using luminance weights.
func grayscaleStep(img image.Image) (image.Image, float64, error) {
	return imaging.Grayscale(img), 0.95, nil
}

// denoiseStep approximates a bilateral filter with two light gaussian
// passes. A true bilateral filter preserves edges better but the double
// pass removes sensor noise well enough for text recognition.
func denoiseStep(img image.Image) (image.Image, float64, error) {
	out := imaging.Blur(img, 0.6)
	out = imaging.Blur(out, 0.6)
	return out, 0.8, nil
}

// contrastStep applies a linear contrast gain.
func contrastStep(img image.Image) (image.Image, float64, error) {
	return imaging.AdjustContrast(img, 20), 0.85, nil
}

// sharpenStep applies unsharp masking (original minus blurred, amplified
// and re-added, clamped per channel).
func sharpenStep(img image.Image) (image.Image, float64, error) {
	return imaging.Sharpen(img, 1.0), 0.85, nil
}
