// Package validate cross-checks an extracted receipt for arithmetic and
// logical consistency. Validation never fails: it always returns a result
// and leaves the accept/reject/review decision to the caller.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/slipscan/slipscan/internal/receipt"
)

// Severity ranks validation errors.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Error is a hard validation failure on a specific field.
type Error struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Warning is a soft inconsistency with an optional correction hint.
type Warning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Result is the validation outcome. Confidence is the extraction confidence
// reduced by a penalty per error and per warning, clamped to [0,1].
type Result struct {
	Valid      bool      `json:"valid"`
	Errors     []Error   `json:"errors,omitempty"`
	Warnings   []Warning `json:"warnings,omitempty"`
	Confidence float64   `json:"confidence"`
}

// Tolerances and penalties. Amounts are in cents.
const (
	totalTolerance    = 50  // |total - (subtotal+tax+tip-discount)| allowed drift
	itemsTolerance    = 100 // |sum(items) - subtotal| allowed drift
	itemLineTolerance = 2   // |item total - qty*unit| allowed rounding drift
	errorPenalty      = 0.10
	warningPenalty    = 0.05
	maxReceiptAge     = 365 * 24 * time.Hour
)

// Validator checks extracted receipts. The clock is injectable so
// future-date checks are testable.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a validator using the wall clock.
func NewValidator() *Validator {
	return &Validator{now: time.Now}
}

// NewValidatorAt creates a validator with a fixed clock.
func NewValidatorAt(now func() time.Time) *Validator {
	return &Validator{now: now}
}

// Validate applies every rule and computes the final confidence.
func (v *Validator) Validate(r *receipt.Receipt) *Result {
	res := &Result{}
	if r == nil {
		res.addError("receipt", "no receipt extracted", SeverityHigh)
		res.finalize(0)
		return res
	}

	v.checkTotal(r, res)
	v.checkArithmetic(r, res)
	v.checkMerchant(r, res)
	v.checkDate(r, res)
	v.checkItems(r, res)

	res.finalize(r.Confidence)
	return res
}

func (v *Validator) checkTotal(r *receipt.Receipt, res *Result) {
	if r.Total == nil {
		res.addError("total", "total amount is missing", SeverityHigh)
		return
	}
	if *r.Total <= 0 {
		res.addError("total", "total amount must be positive", SeverityHigh)
	}
}

func (v *Validator) checkArithmetic(r *receipt.Receipt, res *Result) {
	expected, ok := r.ExpectedTotal()
	if !ok || r.Total == nil {
		return
	}
	diff := (*r.Total - expected).Abs()
	if diff > totalTolerance {
		res.addWarning("total",
			fmt.Sprintf("total %s differs from component sum %s by %s", r.Total, expected, diff),
			fmt.Sprintf("expected total near %s", expected))
	}
}

func (v *Validator) checkMerchant(r *receipt.Receipt, res *Result) {
	if r.Merchant == "" {
		res.addError("merchant", "merchant name is missing", SeverityMedium)
	}
}

func (v *Validator) checkDate(r *receipt.Receipt, res *Result) {
	if r.Date == nil {
		res.addError("date", "transaction date is missing", SeverityHigh)
		return
	}
	now := v.now()
	if r.Date.After(now) {
		res.addError("date", "transaction date is in the future", SeverityHigh)
		return
	}
	if now.Sub(*r.Date) > maxReceiptAge {
		res.addWarning("date", "transaction date is more than one year old", "")
	}
}

func (v *Validator) checkItems(r *receipt.Receipt, res *Result) {
	sum, ok := r.ItemsTotal()
	if ok && r.Subtotal != nil {
		if (sum - *r.Subtotal).Abs() > itemsTolerance {
			res.addWarning("items",
				fmt.Sprintf("line items sum to %s but subtotal is %s", sum, r.Subtotal),
				"some line items may be missing or misread")
		}
	}
	for i, it := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.TotalPrice < 0 {
			res.addError(field, "item total is negative", SeverityMedium)
		}
		if qty, err := strconv.ParseFloat(it.Quantity, 64); err == nil && it.UnitPrice != nil {
			expected := receipt.Money(math.Round(qty * float64(*it.UnitPrice)))
			if (it.TotalPrice - expected).Abs() > itemLineTolerance {
				res.addWarning(field,
					fmt.Sprintf("item total %s does not match quantity x unit price %s", it.TotalPrice, expected),
					fmt.Sprintf("expected %s", expected))
			}
		}
	}
}

func (res *Result) addError(field, message string, sev Severity) {
	res.Errors = append(res.Errors, Error{Field: field, Message: message, Severity: sev})
}

func (res *Result) addWarning(field, message, suggestion string) {
	res.Warnings = append(res.Warnings, Warning{Field: field, Message: message, Suggestion: suggestion})
}

// finalize sets validity and the penalized confidence.
func (res *Result) finalize(base float64) {
	res.Valid = len(res.Errors) == 0
	conf := base - errorPenalty*float64(len(res.Errors)) - warningPenalty*float64(len(res.Warnings))
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	res.Confidence = conf
}
