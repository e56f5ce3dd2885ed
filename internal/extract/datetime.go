package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/slipscan/slipscan/internal/recognize"
)

// dateFormat pairs a detection regexp with the time layouts tried on its
// match. Formats are ordered: more explicit formats first so a line like
// "2024-03-05" never parses as a slash format fragment.
type dateFormat struct {
	re      *regexp.Regexp
	layouts []string
}

var dateFormats = []dateFormat{
	{
		re:      regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		layouts: []string{"2006-01-02"},
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		layouts: []string{"1/2/2006", "2/1/2006"},
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{4}\b`),
		layouts: []string{"1-2-2006", "2-1-2006"},
	},
	{
		re:      regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2}\b`),
		layouts: []string{"1/2/06", "2/1/06"},
	},
	{
		re:      regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
		layouts: []string{"Jan 2, 2006", "Jan 2 2006", "January 2, 2006", "January 2 2006"},
	},
	{
		re:      regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
		layouts: []string{"2 Jan 2006", "2 January 2006"},
	},
}

var timeRE = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\s*(?:[AaPp][Mm])?\b`)

// dateCandidate is a scored date match.
type dateCandidate struct {
	value      time.Time
	confidence float64
}

// extractDate tries the ordered date formats against each line in the first
// blocks. Confidence grows with a date keyword on the line and with
// proximity to the top of the document.
func extractDate(blocks []recognize.TextBlock, blockLimit int) (*time.Time, float64) {
	limit := blockLimit
	if limit > len(blocks) {
		limit = len(blocks)
	}

	var best *dateCandidate
	for bi := 0; bi < limit; bi++ {
		for _, ln := range blocks[bi].Lines {
			t, ok := matchDate(ln.Text)
			if !ok {
				continue
			}
			conf := 0.4 + dateKeywordScore(ln.Text) + datePositionScore(bi, limit)
			if best == nil || conf > best.confidence {
				best = &dateCandidate{value: t, confidence: clampConfidence(conf)}
			}
		}
	}
	if best == nil {
		return nil, 0
	}
	v := best.value
	return &v, best.confidence
}

// matchDate returns the first parseable date in the line. When a slash or
// dash format is ambiguous between month-first and day-first, month-first
// is preferred and day-first is used only when month-first is invalid.
func matchDate(line string) (time.Time, bool) {
	for _, df := range dateFormats {
		raw := df.re.FindString(line)
		if raw == "" {
			continue
		}
		normalized := normalizeMonth(raw)
		for _, layout := range df.layouts {
			if t, err := time.Parse(layout, normalized); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// normalizeMonth title-cases month names so time.Parse accepts them.
func normalizeMonth(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) >= 3 && isAlpha(w[0]) {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// extractTime looks for a clock time next to a time or transaction keyword
// in the first blocks; failing that, it accepts any valid time pattern
// within the wider fallback window.
func extractTime(blocks []recognize.TextBlock, blockLimit, fallbackLimit int) string {
	limit := blockLimit
	if limit > len(blocks) {
		limit = len(blocks)
	}
	for bi := 0; bi < limit; bi++ {
		for _, ln := range blocks[bi].Lines {
			if !containsAny(ln.Text, timeKeywords) {
				continue
			}
			if m := timeRE.FindString(ln.Text); m != "" {
				return strings.TrimSpace(m)
			}
		}
	}

	fb := fallbackLimit
	if fb > len(blocks) {
		fb = len(blocks)
	}
	for bi := 0; bi < fb; bi++ {
		for _, ln := range blocks[bi].Lines {
			if m := timeRE.FindString(ln.Text); m != "" {
				return strings.TrimSpace(m)
			}
		}
	}
	return ""
}
