package extract

import (
	"github.com/slipscan/slipscan/internal/receipt"
)

// scanLine pairs a text line with its position in the document.
type scanLine struct {
	text  string
	block int
	line  int // index within the flattened document order
}

// amountCandidate is a provisional total value before selection.
type amountCandidate struct {
	value      receipt.Money
	confidence float64
	line       int
}

// extractTotal scans lines bottom-to-top and scores every strict currency
// match on a total-keyword line. The candidate with the maximum confidence
// wins; on ties the one nearer the bottom (found earlier in the scan) is
// kept. Lines naming subtotal or tax are excluded even though they contain
// the "total" substring.
func extractTotal(lines []scanLine) (*amountCandidate, []amountCandidate) {
	var best *amountCandidate
	var all []amountCandidate
	for bottomIdx := 0; bottomIdx < len(lines); bottomIdx++ {
		ln := lines[len(lines)-1-bottomIdx]
		if containsAny(ln.text, totalExcludeKeywords) {
			continue
		}
		keyword := totalKeywordScore(ln.text)
		for _, price := range findPrices(ln.text) {
			conf := amountBaseConfidence +
				keyword +
				bottomPositionScore(bottomIdx) +
				currencySymbolScore(price.hasSymbol) +
				amountPlausibilityScore(price.amount)
			cand := amountCandidate{
				value:      price.amount,
				confidence: clampConfidence(conf),
				line:       ln.line,
			}
			all = append(all, cand)
			if best == nil || cand.confidence > best.confidence {
				c := cand
				best = &c
			}
		}
	}
	return best, all
}

// extractLabeledAmount finds the first bottom-up line matching the keyword
// set that carries a valid adjacent price. These labels are rare enough
// that the first match wins without multi-candidate scoring.
func extractLabeledAmount(lines []scanLine, keywords []string) *receipt.Money {
	for i := len(lines) - 1; i >= 0; i-- {
		ln := lines[i]
		if !containsAny(ln.text, keywords) {
			continue
		}
		prices := findPrices(ln.text)
		if len(prices) == 0 {
			continue
		}
		// The rightmost price on a labeled line is the labeled value.
		v := prices[len(prices)-1].amount
		return &v
	}
	return nil
}
