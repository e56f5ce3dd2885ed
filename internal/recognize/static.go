package recognize

import (
	"context"
	"image"
	"strings"
)

// Static is a Recognizer that returns a fixed result regardless of input.
// It backs tests and dry runs where no OCR engine is available.
type Static struct {
	Result *Result
	Err    error
}

// Recognize returns the configured result or error.
func (s *Static) Recognize(ctx context.Context, _ image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}

// ResultFromLines builds a Result with one block per entry, lines split on
// newlines, with synthetic stacked geometry. Useful for constructing
// positioned test documents without an engine.
func ResultFromLines(blocks ...string) *Result {
	const lineHeight = 20
	res := &Result{}
	y := 0
	var all []string
	for _, blockText := range blocks {
		lines := strings.Split(blockText, "\n")
		block := TextBlock{Text: blockText}
		top := y
		for _, lt := range lines {
			box := &Rect{Left: 0, Top: y, Right: 400, Bottom: y + lineHeight}
			line := TextLine{Text: lt, Box: box}
			for _, w := range strings.Fields(lt) {
				line.Elements = append(line.Elements, TextElement{Text: w, Box: box})
			}
			block.Lines = append(block.Lines, line)
			y += lineHeight
		}
		block.Box = &Rect{Left: 0, Top: top, Right: 400, Bottom: y}
		res.Blocks = append(res.Blocks, block)
		all = append(all, blockText)
	}
	res.FullText = strings.Join(all, "\n")
	return res
}
