package normalize

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkerImage builds a high-contrast test image.
func checkerImage(w, h, cell int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

// flatImage builds a uniform gray image.
func flatImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: 128})
		}
	}
	return img
}

func TestNormalizeInvalidInput(t *testing.T) {
	_, err := Normalize(nil, DefaultOptions())
	require.Error(t, err)

	_, err = Normalize(image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultOptions())
	require.Error(t, err)
}

func TestNormalizeAllStepsDisabled(t *testing.T) {
	img := checkerImage(100, 150, 10)
	res, err := Normalize(img, Options{})
	require.NoError(t, err)

	assert.Same(t, img, res.Processed, "no enabled step leaves the image untouched")
	assert.Same(t, img, res.Original)
	require.Len(t, res.Steps, 7)
	for _, s := range res.Steps {
		assert.False(t, s.Applied)
	}
}

func TestNormalizeDefaultOptions(t *testing.T) {
	img := checkerImage(100, 150, 10)
	res, err := Normalize(img, DefaultOptions())
	require.NoError(t, err)

	require.NotNil(t, res.Processed)
	b := res.Processed.Bounds()
	assert.GreaterOrEqual(t, b.Dx(), 1)
	assert.GreaterOrEqual(t, b.Dy(), 1)
	assert.GreaterOrEqual(t, res.Quality, 0.0)
	assert.LessOrEqual(t, res.Quality, 1.0)

	applied := make(map[string]bool)
	for _, s := range res.Steps {
		applied[s.Name] = s.Applied
	}
	assert.True(t, applied["orientation"])
	assert.True(t, applied["grayscale"])
	assert.True(t, applied["denoise"])
	assert.True(t, applied["contrast"])
	assert.True(t, applied["sharpen"])
	assert.False(t, applied["scale"])
	assert.False(t, applied["binarize"])
}

func TestNormalizeDeterministic(t *testing.T) {
	img := checkerImage(80, 120, 8)
	first, err := Normalize(img, DefaultOptions())
	require.NoError(t, err)
	second, err := Normalize(img, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, first.Steps, second.Steps)
	assert.Equal(t, first.Quality, second.Quality)
	assert.Equal(t, first.Processed.Bounds(), second.Processed.Bounds())
}

func TestScaleStep(t *testing.T) {
	img := checkerImage(100, 100, 10)

	out, conf, err := scaleStep(img, 2.0)
	require.NoError(t, err)
	assert.Equal(t, 200, out.Bounds().Dx())
	assert.Equal(t, 200, out.Bounds().Dy())
	assert.Greater(t, conf, 0.0)

	out, _, err = scaleStep(img, 1.0)
	require.NoError(t, err)
	assert.Same(t, img, out)

	_, _, err = scaleStep(img, 0)
	assert.Error(t, err)

	_, _, err = scaleStep(img, 0.001)
	assert.Error(t, err, "factor collapsing the image to zero pixels")
}

func TestOrientationStepKeepsUprightReceipt(t *testing.T) {
	img := checkerImage(100, 150, 10)
	out, score, err := orientationStep(img)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 150, out.Bounds().Dy())
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestOrientationStepRotatesSidewaysReceipt(t *testing.T) {
	// A landscape 300x100 photo is a receipt on its side; the portrait
	// candidate scores higher and wins.
	img := checkerImage(300, 100, 10)
	out, score, err := orientationStep(img)
	require.NoError(t, err)
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 300, out.Bounds().Dy())
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestAspectScore(t *testing.T) {
	tests := []struct {
		w, h int
		want float64
	}{
		{100, 150, 1.0},
		{100, 100, 1.0},
		{100, 400, 1.0},
		{100, 50, 0.5},
		{100, 800, 0.5},
	}
	for _, tt := range tests {
		img := image.NewNRGBA(image.Rect(0, 0, tt.w, tt.h))
		assert.InDelta(t, tt.want, aspectScore(img), 1e-9)
	}
}

func TestBinarizeStepProducesBlackAndWhite(t *testing.T) {
	img := checkerImage(64, 64, 8)
	out, conf, err := binarizeStep(img)
	require.NoError(t, err)
	assert.Greater(t, conf, 0.0)

	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 3 {
		for x := b.Min.X; x < b.Max.X; x += 3 {
			r, g, bb, _ := out.At(x, y).RGBA()
			v := r >> 8
			assert.True(t, v == 0 || v == 255, "pixel must be pure black or white")
			assert.Equal(t, r, g)
			assert.Equal(t, g, bb)
		}
	}
}

func TestQualityScoreRange(t *testing.T) {
	high := qualityScore(checkerImage(100, 100, 4))
	low := qualityScore(flatImage(100, 100))

	assert.GreaterOrEqual(t, high, 0.0)
	assert.LessOrEqual(t, high, 1.0)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.Greater(t, high, low, "checkerboard has more contrast and edges than a flat image")
	assert.Zero(t, low)
}
