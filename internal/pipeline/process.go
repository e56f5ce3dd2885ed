package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/slipscan/slipscan/internal/normalize"
	"github.com/slipscan/slipscan/internal/receipt"
	"github.com/slipscan/slipscan/internal/recognize"
	"github.com/slipscan/slipscan/internal/validate"
)

// ScanResult is the terminal success payload: the extracted receipt, its
// validation outcome, and per-stage diagnostics.
type ScanResult struct {
	Receipt    *receipt.Receipt        `json:"receipt"`
	Validation *validate.Result        `json:"validation"`
	Steps      []normalize.StepResult  `json:"normalization_steps"`
	Quality    float64                 `json:"image_quality"`
	Processing struct {
		NormalizeNs int64 `json:"normalize_ns"`
		RecognizeNs int64 `json:"recognize_ns"`
		ExtractNs   int64 `json:"extract_ns"`
		ValidateNs  int64 `json:"validate_ns"`
		TotalNs     int64 `json:"total_ns"`
	} `json:"processing"`
}

// Process runs the full pipeline on a single image.
func (p *Pipeline) Process(img image.Image) (*ScanResult, error) {
	return p.ProcessContext(context.Background(), img)
}

// ProcessContext is like Process but allows cancellation via context.
// Cancellation stops scheduling further stages; an in-flight recognition
// call cannot be retracted, and partial results are discarded.
func (p *Pipeline) ProcessContext(ctx context.Context, img image.Image) (*ScanResult, error) {
	return p.run(ctx, img, p.callback)
}

// ProcessWithCallback runs the pipeline reporting stage transitions to the
// supplied callback instead of the pipeline default.
func (p *Pipeline) ProcessWithCallback(ctx context.Context, img image.Image, cb StageCallback) (*ScanResult, error) {
	if cb == nil {
		cb = NoOpStageCallback{}
	}
	return p.run(ctx, img, cb)
}

func (p *Pipeline) run(ctx context.Context, img image.Image, cb StageCallback) (*ScanResult, error) {
	if img == nil {
		return nil, p.fail(cb, StageIdle, ErrorInput, false, errors.New("input image is nil"))
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, p.fail(cb, StageIdle, ErrorInput, false, errors.New("input image is empty"))
	}

	totalStart := time.Now()
	result := &ScanResult{}

	// Normalizing
	if err := ctx.Err(); err != nil {
		return nil, p.fail(cb, StageNormalizing, ErrorCanceled, true, err)
	}
	cb.OnStage(StageNormalizing)
	normStart := time.Now()
	normRes, err := normalize.Normalize(img, p.cfg.Normalize)
	if err != nil {
		return nil, p.fail(cb, StageNormalizing, ErrorNormalization, false, err)
	}
	result.Steps = normRes.Steps
	result.Quality = normRes.Quality
	result.Processing.NormalizeNs = time.Since(normStart).Nanoseconds()

	// Recognizing
	if err := ctx.Err(); err != nil {
		return nil, p.fail(cb, StageRecognizing, ErrorCanceled, true, err)
	}
	cb.OnStage(StageRecognizing)
	recStart := time.Now()
	recRes, err := p.recognizer.Recognize(ctx, normRes.Processed)
	if err != nil {
		transient := false
		var recErr *recognize.RecognitionError
		if errors.As(err, &recErr) {
			transient = recErr.Transient
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, p.fail(cb, StageRecognizing, ErrorCanceled, true, err)
		}
		return nil, p.fail(cb, StageRecognizing, ErrorRecognition, transient, err)
	}
	if recRes.Empty() {
		return nil, p.fail(cb, StageRecognizing, ErrorRecognition, false,
			errors.New("recognition returned no text"))
	}
	result.Processing.RecognizeNs = time.Since(recStart).Nanoseconds()

	// Extracting
	if err := ctx.Err(); err != nil {
		return nil, p.fail(cb, StageExtracting, ErrorCanceled, true, err)
	}
	cb.OnStage(StageExtracting)
	extStart := time.Now()
	rec := p.engine.Extract(recRes)
	result.Receipt = rec
	result.Processing.ExtractNs = time.Since(extStart).Nanoseconds()

	// Validating
	if err := ctx.Err(); err != nil {
		return nil, p.fail(cb, StageValidating, ErrorCanceled, true, err)
	}
	cb.OnStage(StageValidating)
	valStart := time.Now()
	result.Validation = p.validator.Validate(rec)
	result.Processing.ValidateNs = time.Since(valStart).Nanoseconds()
	result.Processing.TotalNs = time.Since(totalStart).Nanoseconds()

	slog.Debug("scan completed",
		"merchant", rec.Merchant,
		"valid", result.Validation.Valid,
		"confidence", result.Validation.Confidence,
		"total_ms", result.Processing.TotalNs/1_000_000)

	cb.OnSucceeded(result)
	return result, nil
}

// fail builds the terminal error, reports it, and returns it.
func (p *Pipeline) fail(cb StageCallback, stage Stage, kind ErrorKind, transient bool, err error) error {
	perr := &PipelineError{Kind: kind, Stage: stage, Transient: transient, Err: err}
	cb.OnFailed(perr)
	return fmt.Errorf("scan: %w", perr)
}
