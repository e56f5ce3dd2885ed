// Package recognize defines the interface to the external text recognition
// engine and the positioned text hierarchy it returns. The pipeline treats
// the engine as a black box: text plus geometry in, no field semantics.
package recognize

import "strings"

// Rect is an axis-aligned bounding rectangle in pixel space.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal extent.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Union returns the smallest rectangle covering both r and o.
func (r Rect) Union(o Rect) Rect {
	out := r
	if o.Left < out.Left {
		out.Left = o.Left
	}
	if o.Top < out.Top {
		out.Top = o.Top
	}
	if o.Right > out.Right {
		out.Right = o.Right
	}
	if o.Bottom > out.Bottom {
		out.Bottom = o.Bottom
	}
	return out
}

// TextElement is a single recognized token.
type TextElement struct {
	Text string `json:"text"`
	Box  *Rect  `json:"box,omitempty"`
}

// TextLine is one visual line of text owning its elements.
type TextLine struct {
	Text     string        `json:"text"`
	Box      *Rect         `json:"box,omitempty"`
	Elements []TextElement `json:"elements,omitempty"`
}

// TextBlock is a paragraph-like group of lines. Blocks are ordered
// top-to-bottom as returned by the engine.
type TextBlock struct {
	Text  string     `json:"text"`
	Box   *Rect      `json:"box,omitempty"`
	Lines []TextLine `json:"lines,omitempty"`
}

// Result is the engine output: the flat recognized text plus the
// block/line/element tree. The tree is immutable once returned.
type Result struct {
	FullText string      `json:"full_text"`
	Blocks   []TextBlock `json:"blocks"`
}

// Lines flattens the block tree into document-ordered lines.
func (r *Result) Lines() []TextLine {
	var out []TextLine
	for _, b := range r.Blocks {
		out = append(out, b.Lines...)
	}
	return out
}

// Empty reports whether the engine recognized no usable text.
func (r *Result) Empty() bool {
	return r == nil || (strings.TrimSpace(r.FullText) == "" && len(r.Blocks) == 0)
}
