package extract

import (
	"regexp"
	"strings"
)

// Keyword tables for field heuristics. Misspelled variants cover common
// OCR confusions (l/1, o/0, missing letters).

var totalKeywords = []string{
	"total", "tota1", "t0tal", "totai", "tctal",
	"balance", "balance due", "amount due", "amount",
	"grand total", "gesamt", "summe",
}

// totalExcludeKeywords disqualify a line from the total scan even when a
// total keyword matches (e.g. "SUBTOTAL" contains "total").
var totalExcludeKeywords = []string{"subtotal", "sub-total", "sub total", "tax", "tip", "discount"}

var subtotalKeywords = []string{"subtotal", "sub-total", "sub total", "subt0tal", "net amount", "zwischensumme"}

var taxKeywords = []string{"tax", "vat", "gst", "hst", "pst", "mwst", "sales tax"}

var tipKeywords = []string{"tip", "gratuity", "service charge", "trinkgeld"}

var discountKeywords = []string{"discount", "rabatt", "coupon", "savings", "promo"}

var merchantKeywords = []string{
	"restaurant", "cafe", "coffee", "market", "store", "shop", "mart",
	"pizza", "grill", "bakery", "pharmacy", "supermarket", "deli",
	"inc", "llc", "ltd", "gmbh", "co.",
}

var dateKeywords = []string{"date", "datum", "issued", "transaction", "trans"}

var timeKeywords = []string{"time", "zeit", "trans", "transaction", "reg", "till", "pos"}

// itemBlacklist marks lines that belong to header/footer boilerplate rather
// than purchased items.
var itemBlacklist = []string{
	"total", "subtotal", "tax", "vat", "tip", "gratuity", "discount",
	"cash", "change", "card", "visa", "mastercard", "debit", "credit",
	"thank", "welcome", "receipt", "invoice", "order", "server", "cashier",
	"tel", "phone", "fax", "www", ".com", "street", "ave", "suite",
	"open", "hours", "customer", "copy", "approved", "auth",
}

var addressKeywords = []string{
	"street", " st ", " st.", "avenue", " ave", "road", " rd", "boulevard",
	"blvd", "lane", " ln", "drive", " dr ", " dr.", "suite", "unit", "plaza",
	"strasse", "straße",
}

// boilerplate patterns penalized during merchant scoring.
var (
	phoneRE       = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	zipRE         = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)
	datePatternRE = regexp.MustCompile(`\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{4}-\d{2}-\d{2}`)
	boilerplateRE = regexp.MustCompile(`(?i)receipt|invoice|order\s*#|transaction|welcome|thank`)
	digitsOnlyRE  = regexp.MustCompile(`^[\d\s.,:#*\-/()]+$`)
)

// containsAny reports whether the lowercase form of s contains any keyword.
func containsAny(s string, keywords []string) bool {
	low := strings.ToLower(s)
	for _, k := range keywords {
		if strings.Contains(low, k) {
			return true
		}
	}
	return false
}
