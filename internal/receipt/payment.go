package receipt

import "strings"

// PaymentMethod is the closed set of recognized tender types.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentMobile     PaymentMethod = "mobile"
	PaymentGiftCard   PaymentMethod = "gift_card"
	PaymentCheck      PaymentMethod = "check"
	PaymentOther      PaymentMethod = "other"
)

// paymentKeywords maps tender keywords to methods; scanned in order so the
// more specific entries come first (e.g. "debit" before generic "card").
var paymentKeywords = []struct {
	method PaymentMethod
	words  []string
}{
	{PaymentDebitCard, []string{"debit", "maestro", "interac", "ec-karte"}},
	{PaymentCreditCard, []string{"visa", "mastercard", "amex", "american express", "discover", "credit", "kreditkarte"}},
	{PaymentMobile, []string{"apple pay", "google pay", "samsung pay", "paypal", "venmo", "contactless"}},
	{PaymentGiftCard, []string{"gift card", "giftcard", "voucher", "store credit"}},
	{PaymentCheck, []string{"check", "cheque"}},
	{PaymentCash, []string{"cash", "change due", "bar", "bargeld"}},
	{PaymentOther, []string{"card", "tender"}},
}

// PaymentMethodFor scans a text line for tender keywords and returns the
// first matching method, or "" when nothing matches.
func PaymentMethodFor(line string) PaymentMethod {
	low := strings.ToLower(line)
	for _, entry := range paymentKeywords {
		for _, w := range entry.words {
			if strings.Contains(low, w) {
				return entry.method
			}
		}
	}
	return ""
}

// Valid reports whether p is one of the closed set of payment methods.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentMobile,
		PaymentGiftCard, PaymentCheck, PaymentOther:
		return true
	}
	return false
}
