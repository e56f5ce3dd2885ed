package recognize

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Config holds Tesseract engine settings.
type Config struct {
	Language string
	// PageSegMode matches tesseract's --psm values; 4 (single column of
	// text of variable sizes) suits receipt layouts.
	PageSegMode int
}

// DefaultConfig provides sensible defaults for receipt recognition.
func DefaultConfig() Config {
	return Config{
		Language:    "eng",
		PageSegMode: 4,
	}
}

// Tesseract adapts the gosseract engine to the Recognizer interface. A fresh
// client is created per call since gosseract clients are not safe for
// concurrent use; the adapter itself is.
type Tesseract struct {
	cfg Config
}

// NewTesseract creates a Tesseract-backed recognizer.
func NewTesseract(cfg Config) *Tesseract {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Tesseract{cfg: cfg}
}

// Recognize runs OCR on the image and assembles the block/line/element tree
// from tesseract's word-level bounding boxes.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil {
		return nil, &RecognitionError{Reason: "nil input image"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RecognitionError{Reason: "encode image", Err: err}
	}

	client := gosseract.NewClient()
	defer func() {
		if err := client.Close(); err != nil {
			slog.Debug("closing tesseract client", "error", err)
		}
	}()

	if err := client.SetLanguage(t.cfg.Language); err != nil {
		return nil, &RecognitionError{Reason: "set language", Err: err}
	}
	if t.cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(t.cfg.PageSegMode)); err != nil {
			return nil, &RecognitionError{Reason: "set page segmentation mode", Err: err}
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &RecognitionError{Reason: "unsupported image data", Err: err}
	}

	text, err := client.Text()
	if err != nil {
		// Tesseract reports busy/resource errors through the same path;
		// treat engine-level failures as transient, input-level as permanent.
		transient := strings.Contains(strings.ToLower(err.Error()), "busy")
		return nil, &RecognitionError{Reason: "text extraction", Transient: transient, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, &RecognitionError{Reason: "bounding boxes", Err: err}
	}

	res := &Result{FullText: text, Blocks: assembleBlocks(words)}
	slog.Debug("recognition completed", "blocks", len(res.Blocks), "text_len", len(text))
	return res, nil
}

// assembleBlocks groups tesseract word boxes into the block/line tree using
// the engine's block and line numbering.
func assembleBlocks(words []gosseract.BoundingBox) []TextBlock {
	var blocks []TextBlock
	var curBlock *TextBlock
	var curLine *TextLine
	lastBlock, lastPar, lastLine := -1, -1, -1

	flushLine := func() {
		if curLine == nil {
			return
		}
		parts := make([]string, 0, len(curLine.Elements))
		for _, el := range curLine.Elements {
			parts = append(parts, el.Text)
		}
		curLine.Text = strings.Join(parts, " ")
		curBlock.Lines = append(curBlock.Lines, *curLine)
		curLine = nil
	}
	flushBlock := func() {
		flushLine()
		if curBlock == nil {
			return
		}
		parts := make([]string, 0, len(curBlock.Lines))
		for _, ln := range curBlock.Lines {
			parts = append(parts, ln.Text)
		}
		curBlock.Text = strings.Join(parts, "\n")
		blocks = append(blocks, *curBlock)
		curBlock = nil
	}

	for _, w := range words {
		word := strings.TrimSpace(w.Word)
		if word == "" {
			continue
		}
		box := &Rect{
			Left:   w.Box.Min.X,
			Top:    w.Box.Min.Y,
			Right:  w.Box.Max.X,
			Bottom: w.Box.Max.Y,
		}
		if curBlock == nil || w.BlockNum != lastBlock {
			flushBlock()
			curBlock = &TextBlock{Box: box}
			lastBlock = w.BlockNum
			lastPar, lastLine = -1, -1
		} else {
			merged := curBlock.Box.Union(*box)
			curBlock.Box = &merged
		}
		if curLine == nil || w.ParNum != lastPar || w.LineNum != lastLine {
			flushLine()
			curLine = &TextLine{Box: box}
			lastPar, lastLine = w.ParNum, w.LineNum
		} else {
			merged := curLine.Box.Union(*box)
			curLine.Box = &merged
		}
		curLine.Elements = append(curLine.Elements, TextElement{Text: word, Box: box})
	}
	flushBlock()
	return blocks
}
