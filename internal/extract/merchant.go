package extract

import (
	"strings"

	"github.com/slipscan/slipscan/internal/recognize"
)

// merchantCandidate is a scored header line.
type merchantCandidate struct {
	name       string
	confidence float64
	block      int
}

// extractMerchant scans the first few blocks top-to-bottom and scores each
// line as a potential merchant name. Falls back to the first non-empty line
// when nothing scores above zero.
func extractMerchant(blocks []recognize.TextBlock, blockLimit int) (string, float64) {
	limit := blockLimit
	if limit > len(blocks) {
		limit = len(blocks)
	}

	var best *merchantCandidate
	var fallback string
	for bi := 0; bi < limit; bi++ {
		for _, ln := range blocks[bi].Lines {
			text := strings.TrimSpace(ln.Text)
			if text == "" {
				continue
			}
			if fallback == "" {
				fallback = text
			}
			conf := merchantKeywordScore(text) +
				merchantPositionScore(bi, limit) +
				merchantCaseScore(text) +
				merchantLengthScore(text) +
				merchantBoilerplateScore(text)
			if conf <= 0 {
				continue
			}
			if best == nil || conf > best.confidence {
				best = &merchantCandidate{name: text, confidence: clampConfidence(conf), block: bi}
			}
		}
	}
	if best != nil {
		return best.name, best.confidence
	}
	if fallback != "" {
		return fallback, 0.2
	}
	return "", 0
}
