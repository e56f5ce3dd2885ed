package extract

import (
	"regexp"
	"strings"

	"github.com/slipscan/slipscan/internal/receipt"
	"github.com/slipscan/slipscan/internal/recognize"
)

// Quantity markers: "2 x", "2 @", "qty 2" and variants.
var (
	qtyPrefixRE = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*[x@]\s+`)
	qtyWordRE   = regexp.MustCompile(`(?i)\bqty\s*:?\s*(\d+(?:\.\d+)?)\b`)
	nameTrimRE  = regexp.MustCompile(`^[\s\-*:#.,]+|[\s\-*:#.,]+$`)
)

const minItemNameLen = 3

// extractItems scans the vertical middle of the document for purchased
// items, skipping the header and footer blocks. A line qualifies when it is
// not boilerplate, is not purely numeric, and carries at least one strict
// currency match. The last price on the line is the item total; with two or
// more prices the first is the unit price.
func extractItems(blocks []recognize.TextBlock, skipHead, skipTail int) []receipt.LineItem {
	if len(blocks) <= skipHead+skipTail {
		return nil
	}
	region := blocks[skipHead : len(blocks)-skipTail]

	var items []receipt.LineItem
	for _, block := range region {
		for _, ln := range block.Lines {
			if item, ok := parseItemLine(ln.Text); ok {
				items = append(items, item)
			}
		}
	}
	return items
}

// parseItemLine converts one candidate line into a LineItem.
func parseItemLine(line string) (receipt.LineItem, bool) {
	text := strings.TrimSpace(line)
	if text == "" {
		return receipt.LineItem{}, false
	}
	if containsAny(text, itemBlacklist) {
		return receipt.LineItem{}, false
	}
	if digitsOnlyRE.MatchString(text) {
		return receipt.LineItem{}, false
	}

	prices := findPrices(text)
	if len(prices) == 0 {
		return receipt.LineItem{}, false
	}

	item := receipt.LineItem{TotalPrice: prices[len(prices)-1].amount}
	if len(prices) > 1 {
		unit := prices[0].amount
		item.UnitPrice = &unit
	}

	rest := stripPrices(text)
	if m := qtyPrefixRE.FindStringSubmatch(rest); m != nil {
		item.Quantity = m[1]
		rest = qtyPrefixRE.ReplaceAllString(rest, " ")
	} else if m := qtyWordRE.FindStringSubmatch(rest); m != nil {
		item.Quantity = m[1]
		rest = qtyWordRE.ReplaceAllString(rest, " ")
	}

	name := nameTrimRE.ReplaceAllString(rest, "")
	name = strings.Join(strings.Fields(name), " ")
	if len(name) < minItemNameLen {
		return receipt.LineItem{}, false
	}
	item.Name = name
	return item, true
}
