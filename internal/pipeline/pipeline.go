// Package pipeline sequences the receipt scanning stages: image
// normalization, text recognition, field extraction and validation. Each
// submitted image is one isolated job; stages hand their output to the next
// stage and retain nothing.
package pipeline

import (
	"errors"

	"github.com/slipscan/slipscan/internal/extract"
	"github.com/slipscan/slipscan/internal/normalize"
	"github.com/slipscan/slipscan/internal/recognize"
	"github.com/slipscan/slipscan/internal/validate"
)

// Config holds configuration for the scan pipeline and its components.
type Config struct {
	Normalize normalize.Options
	Extract   extract.Config
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		Normalize: normalize.DefaultOptions(),
		Extract:   extract.DefaultConfig(),
	}
}

// Builder constructs a Pipeline with fluent configuration. Components are
// injected explicitly; the pipeline holds no process-wide state.
type Builder struct {
	cfg        Config
	recognizer recognize.Recognizer
	validator  *validate.Validator
	callback   StageCallback
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// WithNormalizeOptions overrides the normalization step selection.
func (b *Builder) WithNormalizeOptions(opts normalize.Options) *Builder {
	b.cfg.Normalize = opts
	return b
}

// WithExtractConfig overrides the extraction scan windows.
func (b *Builder) WithExtractConfig(cfg extract.Config) *Builder {
	b.cfg.Extract = cfg
	return b
}

// WithRecognizer injects the text recognition engine. Required.
func (b *Builder) WithRecognizer(r recognize.Recognizer) *Builder {
	b.recognizer = r
	return b
}

// WithValidator overrides the default validator.
func (b *Builder) WithValidator(v *validate.Validator) *Builder {
	b.validator = v
	return b
}

// WithStageCallback sets the default stage callback for jobs that do not
// supply their own.
func (b *Builder) WithStageCallback(cb StageCallback) *Builder {
	b.callback = cb
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the configuration is complete.
func (b *Builder) Validate() error {
	if b.recognizer == nil {
		return errors.New("recognizer is required")
	}
	if b.cfg.Normalize.Scale && b.cfg.Normalize.ScaleFactor <= 0 {
		return errors.New("scale factor must be positive when scaling is enabled")
	}
	return nil
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg        Config
	recognizer recognize.Recognizer
	engine     *extract.Engine
	validator  *validate.Validator
	callback   StageCallback
}

// Build initializes the pipeline components.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	v := b.validator
	if v == nil {
		v = validate.NewValidator()
	}
	cb := b.callback
	if cb == nil {
		cb = NoOpStageCallback{}
	}
	return &Pipeline{
		cfg:        b.cfg,
		recognizer: b.recognizer,
		engine:     extract.NewEngine(b.cfg.Extract),
		validator:  v,
		callback:   cb,
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }
