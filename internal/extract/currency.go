package extract

import (
	"regexp"
	"strings"

	"github.com/slipscan/slipscan/internal/receipt"
)

// currencyRE matches strictly formatted prices: an optional currency
// symbol followed by digits with exactly two decimal places. The digit
// run may carry comma grouping or none at all; POS printers emit both
// "1,234.56" and "1234.56". Loosely formatted numbers (no decimals,
// wrong precision) are deliberately ignored; they are usually
// quantities, ids or weights.
var currencyRE = regexp.MustCompile(`(?:[$€£]\s*)?\b(?:\d{1,3}(?:,\d{3})+|\d+)\.\d{2}\b`)

// priceMatch is one currency hit within a line.
type priceMatch struct {
	raw       string
	amount    receipt.Money
	hasSymbol bool
}

// findPrices returns all strict currency matches in a line, in order.
func findPrices(line string) []priceMatch {
	var out []priceMatch
	for _, raw := range currencyRE.FindAllString(line, -1) {
		hasSymbol := strings.ContainsAny(raw, "$€£")
		amount, err := receipt.ParseMoney(raw)
		if err != nil {
			continue
		}
		out = append(out, priceMatch{raw: raw, amount: amount, hasSymbol: hasSymbol})
	}
	return out
}

// stripPrices removes every currency match from the line.
func stripPrices(line string) string {
	return currencyRE.ReplaceAllString(line, "")
}
