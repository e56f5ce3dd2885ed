// Package receipt defines the structured record recovered from a scanned
// receipt image together with its serialized interchange form.
package receipt

import "time"

// LineItem is a single purchased item. Quantity is kept as the raw token
// recovered from the receipt text since quantities may be non-integer
// ("0.450" kg). TotalPrice is required; UnitPrice is present only when the
// line carried more than one price.
type LineItem struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity,omitempty"`
	UnitPrice  *Money `json:"unit_price,omitempty"`
	TotalPrice Money  `json:"total_price"`
}

// Receipt is the extracted, caller-facing record. Optional fields are nil
// when extraction found no candidate; absence is never an error.
type Receipt struct {
	Merchant      string        `json:"merchant,omitempty"`
	Address       string        `json:"address,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	Date          *time.Time    `json:"date,omitempty"`
	Time          string        `json:"time,omitempty"`
	Items         []LineItem    `json:"items,omitempty"`
	Subtotal      *Money        `json:"subtotal,omitempty"`
	Tax           *Money        `json:"tax,omitempty"`
	Tip           *Money        `json:"tip,omitempty"`
	Discount      *Money        `json:"discount,omitempty"`
	Total         *Money        `json:"total,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	Category      Category      `json:"category,omitempty"`
	RawText       string        `json:"raw_text,omitempty"`
	Confidence    float64       `json:"confidence"`
}

// ItemsTotal sums the line item totals. Returns false when no items exist.
func (r *Receipt) ItemsTotal() (Money, bool) {
	if len(r.Items) == 0 {
		return 0, false
	}
	var sum Money
	for _, it := range r.Items {
		sum += it.TotalPrice
	}
	return sum, true
}

// ExpectedTotal computes subtotal + tax + tip - discount using only the
// components that are present. Returns false unless both subtotal and tax
// are set, since the arithmetic check is meaningless otherwise.
func (r *Receipt) ExpectedTotal() (Money, bool) {
	if r.Subtotal == nil || r.Tax == nil {
		return 0, false
	}
	sum := *r.Subtotal + *r.Tax
	if r.Tip != nil {
		sum += *r.Tip
	}
	if r.Discount != nil {
		sum -= *r.Discount
	}
	return sum, true
}
