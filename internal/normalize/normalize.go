// Package normalize prepares photographed receipt images for text
// recognition: scaling, orientation correction, grayscale conversion, noise
// reduction, contrast enhancement, sharpening and optional binarization.
// Individual step failures fall back to the unmodified input for that step;
// normalization as a whole only fails on invalid input.
package normalize

import (
	"errors"
	"image"
	"log/slog"
	"time"
)

// Options selects which normalization steps run. The zero value disables
// everything; use DefaultOptions for the standard receipt pipeline.
type Options struct {
	Scale       bool    `mapstructure:"scale" yaml:"scale" json:"scale"`
	ScaleFactor float64 `mapstructure:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
	Deskew      bool    `mapstructure:"deskew" yaml:"deskew" json:"deskew"`
	Grayscale   bool    `mapstructure:"grayscale" yaml:"grayscale" json:"grayscale"`
	Denoise     bool    `mapstructure:"denoise" yaml:"denoise" json:"denoise"`
	Contrast    bool    `mapstructure:"contrast" yaml:"contrast" json:"contrast"`
	Sharpen     bool    `mapstructure:"sharpen" yaml:"sharpen" json:"sharpen"`
	Binarize    bool    `mapstructure:"binarize" yaml:"binarize" json:"binarize"`
}

// DefaultOptions enables every step except binarization and scaling.
func DefaultOptions() Options {
	return Options{
		Scale:       false,
		ScaleFactor: 1.0,
		Deskew:      true,
		Grayscale:   true,
		Denoise:     true,
		Contrast:    true,
		Sharpen:     true,
		Binarize:    false,
	}
}

// StepResult records the outcome of one normalization step.
type StepResult struct {
	Name       string  `json:"name"`
	Applied    bool    `json:"applied"`
	Confidence float64 `json:"confidence"`
}

// Result is the normalization output. Original is borrowed from the caller
// and must not be mutated; Processed is owned by the result and handed to
// the recognition stage.
type Result struct {
	Original  image.Image   `json:"-"`
	Processed image.Image   `json:"-"`
	Steps     []StepResult  `json:"steps"`
	Elapsed   time.Duration `json:"elapsed_ns"`
	Quality   float64       `json:"quality"`
}

// step is one toggleable transformation. apply returns the transformed
// image and a confidence for the transformation.
type step struct {
	name    string
	enabled bool
	apply   func(image.Image) (image.Image, float64, error)
}

// Normalize runs the enabled steps in order and scores the final image.
// It is a pure function of (img, opts): identical inputs give identical
// outputs. Returns an error only for nil or empty input.
func Normalize(img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("input image is empty")
	}

	start := time.Now()
	working := img
	res := &Result{Original: img}

	steps := []step{
		{"scale", opts.Scale, func(in image.Image) (image.Image, float64, error) {
			return scaleStep(in, opts.ScaleFactor)
		}},
		{"orientation", opts.Deskew, orientationStep},
		{"grayscale", opts.Grayscale, grayscaleStep},
		{"denoise", opts.Denoise, denoiseStep},
		{"contrast", opts.Contrast, contrastStep},
		{"sharpen", opts.Sharpen, sharpenStep},
		{"binarize", opts.Binarize, binarizeStep},
	}

	for _, s := range steps {
		if !s.enabled {
			res.Steps = append(res.Steps, StepResult{Name: s.name})
			continue
		}
		out, conf, err := s.apply(working)
		if err != nil || out == nil {
			slog.Debug("normalization step failed, keeping input", "step", s.name, "error", err)
			res.Steps = append(res.Steps, StepResult{Name: s.name})
			continue
		}
		working = out
		res.Steps = append(res.Steps, StepResult{Name: s.name, Applied: true, Confidence: conf})
	}

	res.Processed = working
	res.Quality = qualityScore(working)
	res.Elapsed = time.Since(start)

	slog.Debug("normalization completed",
		"width", working.Bounds().Dx(),
		"height", working.Bounds().Dy(),
		"quality", res.Quality,
		"elapsed_ms", res.Elapsed.Milliseconds())
	return res, nil
}
