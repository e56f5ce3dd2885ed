package extract

import (
	"strings"
	"unicode"

	"github.com/slipscan/slipscan/internal/receipt"
)

// Scoring weights. These are empirically tuned business rules; adjust the
// constants, not the control flow around them.
const (
	amountBaseConfidence     = 0.3
	amountKeywordBonus       = 0.3
	amountPositionBonusMax   = 0.2
	amountPositionBonusDecay = 0.02
	amountSymbolBonus        = 0.1
	amountPlausibleBonus     = 0.1
	amountTinyPenalty        = 0.2

	merchantKeywordBonus    = 0.4
	merchantPositionStep    = 0.1
	merchantPositionMax     = 0.5
	merchantUppercaseBonus  = 0.2
	merchantLengthBonus     = 0.1
	merchantBoilerplatePen  = 0.3
	merchantMinNameLen      = 4
	merchantMaxNameLen      = 50

	dateKeywordBonus  = 0.3
	datePositionBonus = 0.05
)

// clampConfidence keeps a score inside [0,1].
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// totalKeywordScore returns the keyword bonus for a candidate total line.
func totalKeywordScore(line string) float64 {
	if containsAny(line, totalKeywords) {
		return amountKeywordBonus
	}
	return 0
}

// bottomPositionScore rewards lines found early in the bottom-up scan,
// where totals usually live.
func bottomPositionScore(bottomIndex int) float64 {
	bonus := amountPositionBonusMax - amountPositionBonusDecay*float64(bottomIndex)
	if bonus < 0 {
		return 0
	}
	return bonus
}

// currencySymbolScore rewards an explicit currency symbol next to the number.
func currencySymbolScore(hasSymbol bool) float64 {
	if hasSymbol {
		return amountSymbolBonus
	}
	return 0
}

// amountPlausibilityScore rewards totals in a realistic range and penalizes
// sub-unit amounts, which are usually fees or per-item tax lines.
func amountPlausibilityScore(m receipt.Money) float64 {
	v := m.Float64()
	score := 0.0
	if v > 0.01 && v < 10000 {
		score += amountPlausibleBonus
	}
	if v < 1.0 {
		score -= amountTinyPenalty
	}
	return score
}

// merchantKeywordScore rewards lines containing a known merchant word.
func merchantKeywordScore(line string) float64 {
	if containsAny(line, merchantKeywords) {
		return merchantKeywordBonus
	}
	return 0
}

// merchantPositionScore rewards lines nearer the top of the document.
func merchantPositionScore(blockIndex, blockLimit int) float64 {
	bonus := merchantPositionStep * float64(blockLimit-blockIndex)
	if bonus > merchantPositionMax {
		return merchantPositionMax
	}
	if bonus < 0 {
		return 0
	}
	return bonus
}

// merchantCaseScore rewards all-uppercase names, the dominant style for
// receipt headers.
func merchantCaseScore(line string) float64 {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) <= 3 {
		return 0
	}
	hasLetter := false
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return 0
			}
		}
	}
	if !hasLetter {
		return 0
	}
	return merchantUppercaseBonus
}

// merchantLengthScore rewards plausible name lengths.
func merchantLengthScore(line string) float64 {
	n := len(strings.TrimSpace(line))
	if n >= merchantMinNameLen && n <= merchantMaxNameLen {
		return merchantLengthBonus
	}
	return 0
}

// merchantBoilerplateScore penalizes lines that look like dates, phone
// numbers or receipt boilerplate rather than a merchant name.
func merchantBoilerplateScore(line string) float64 {
	if datePatternRE.MatchString(line) || phoneRE.MatchString(line) || boilerplateRE.MatchString(line) {
		return -merchantBoilerplatePen
	}
	return 0
}

// dateKeywordScore rewards a date/time keyword on the same line.
func dateKeywordScore(line string) float64 {
	if containsAny(line, dateKeywords) {
		return dateKeywordBonus
	}
	return 0
}

// datePositionScore rewards earlier blocks; receipts print dates near the top.
func datePositionScore(blockIndex, blockLimit int) float64 {
	bonus := datePositionBonus * float64(blockLimit-blockIndex)
	if bonus < 0 {
		return 0
	}
	return bonus
}
