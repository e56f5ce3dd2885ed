package recognize

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectUnion(t *testing.T) {
	a := Rect{Left: 10, Top: 10, Right: 50, Bottom: 30}
	b := Rect{Left: 40, Top: 5, Right: 80, Bottom: 25}

	u := a.Union(b)
	assert.Equal(t, Rect{Left: 10, Top: 5, Right: 80, Bottom: 30}, u)
	assert.Equal(t, 70, u.Width())
	assert.Equal(t, 25, u.Height())
}

func TestResultLinesAndEmpty(t *testing.T) {
	var nilRes *Result
	assert.True(t, nilRes.Empty())
	assert.True(t, (&Result{}).Empty())
	assert.True(t, (&Result{FullText: "   "}).Empty())
	assert.False(t, (&Result{FullText: "TOTAL 4.50"}).Empty())

	res := ResultFromLines("A\nB", "C")
	lines := res.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "A", lines[0].Text)
	assert.Equal(t, "C", lines[2].Text)
}

func TestResultFromLinesGeometry(t *testing.T) {
	res := ResultFromLines("HEADER", "Item 1.00\nItem 2.00")
	require.Len(t, res.Blocks, 2)

	first := res.Blocks[0]
	second := res.Blocks[1]
	require.NotNil(t, first.Box)
	require.NotNil(t, second.Box)
	assert.Less(t, first.Box.Bottom, second.Box.Bottom, "blocks stack downward")
	assert.Equal(t, first.Box.Bottom, second.Box.Top)

	require.Len(t, second.Lines, 2)
	assert.Less(t, second.Lines[0].Box.Top, second.Lines[1].Box.Top)
	assert.Equal(t, "HEADER\nItem 1.00\nItem 2.00", res.FullText)

	require.Len(t, second.Lines[0].Elements, 2)
	assert.Equal(t, "Item", second.Lines[0].Elements[0].Text)
}

func TestStaticRecognizer(t *testing.T) {
	want := ResultFromLines("TOTAL 4.50")
	s := &Static{Result: want}

	got, err := s.Recognize(context.Background(), nil)
	require.NoError(t, err)
	assert.Same(t, want, got)

	s = &Static{Err: &RecognitionError{Reason: "engine busy", Transient: true}}
	_, err = s.Recognize(context.Background(), nil)
	var recErr *RecognitionError
	require.ErrorAs(t, err, &recErr)
	assert.True(t, recErr.Transient)
}

func TestStaticRecognizerHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Static{Result: ResultFromLines("TOTAL 4.50")}
	_, err := s.Recognize(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecognitionErrorMessage(t *testing.T) {
	e := &RecognitionError{Reason: "engine busy", Transient: true}
	assert.Contains(t, e.Error(), "transient")
	assert.Contains(t, e.Error(), "engine busy")

	inner := errors.New("boom")
	e = &RecognitionError{Reason: "text extraction", Err: inner}
	assert.Contains(t, e.Error(), "permanent")
	assert.ErrorIs(t, e, inner)
}

func TestTesseractRejectsNilImage(t *testing.T) {
	rec := NewTesseract(DefaultConfig())
	_, err := rec.Recognize(context.Background(), nil)
	var recErr *RecognitionError
	require.ErrorAs(t, err, &recErr)
	assert.False(t, recErr.Transient)
}

func TestTesseractHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := NewTesseract(DefaultConfig())
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	_, err := rec.Recognize(ctx, img)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssembleBlocks(t *testing.T) {
	box := func(l, t, r, b int) image.Rectangle {
		return image.Rect(l, t, r, b)
	}
	words := []gosseract.BoundingBox{
		{Word: "FRESH", Box: box(0, 0, 50, 20), BlockNum: 1, ParNum: 1, LineNum: 1},
		{Word: "MART", Box: box(55, 0, 95, 20), BlockNum: 1, ParNum: 1, LineNum: 1},
		{Word: "Total", Box: box(0, 100, 40, 120), BlockNum: 2, ParNum: 1, LineNum: 1},
		{Word: "4.50", Box: box(60, 100, 95, 120), BlockNum: 2, ParNum: 1, LineNum: 1},
		{Word: "Thanks", Box: box(0, 125, 60, 145), BlockNum: 2, ParNum: 1, LineNum: 2},
		{Word: "  ", Box: box(0, 150, 10, 160), BlockNum: 3, ParNum: 1, LineNum: 1},
	}

	blocks := assembleBlocks(words)
	require.Len(t, blocks, 2, "whitespace-only words are dropped")

	assert.Equal(t, "FRESH MART", blocks[0].Text)
	require.Len(t, blocks[0].Lines, 1)
	assert.Equal(t, &Rect{Left: 0, Top: 0, Right: 95, Bottom: 20}, blocks[0].Lines[0].Box)

	assert.Equal(t, "Total 4.50\nThanks", blocks[1].Text)
	require.Len(t, blocks[1].Lines, 2)
	assert.Equal(t, "Total 4.50", blocks[1].Lines[0].Text)
	assert.Equal(t, &Rect{Left: 0, Top: 100, Right: 95, Bottom: 145}, blocks[1].Box)
}
