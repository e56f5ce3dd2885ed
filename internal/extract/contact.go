package extract

import (
	"strings"

	"github.com/slipscan/slipscan/internal/receipt"
)

// extractPhone returns the first phone-number-shaped match in the document.
func extractPhone(lines []scanLine) string {
	for _, ln := range lines {
		if m := phoneRE.FindString(ln.text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// extractAddress returns the first line carrying an address indicator,
// appending the following line when that line looks like a city/zip line.
func extractAddress(lines []scanLine) string {
	for i, ln := range lines {
		low := " " + strings.ToLower(ln.text) + " "
		matched := false
		for _, k := range addressKeywords {
			if strings.Contains(low, k) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		address := strings.TrimSpace(ln.text)
		if i+1 < len(lines) && zipRE.MatchString(lines[i+1].text) {
			address += ", " + strings.TrimSpace(lines[i+1].text)
		}
		return address
	}
	return ""
}

// extractPaymentMethod returns the first tender keyword match, scanning
// bottom-up since payment lines trail the totals.
func extractPaymentMethod(lines []scanLine) receipt.PaymentMethod {
	for i := len(lines) - 1; i >= 0; i-- {
		if m := receipt.PaymentMethodFor(lines[i].text); m != "" {
			return m
		}
	}
	return ""
}
