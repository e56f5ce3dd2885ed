// Package extract recovers structured receipt fields from the positioned
// text returned by the recognition engine. Each field has its own
// heuristic producing confidence-scored candidates; winners are selected by
// maximum confidence. Absent fields stay unset; extraction never fails.
package extract

import (
	"log/slog"
	"strings"

	"github.com/slipscan/slipscan/internal/receipt"
	"github.com/slipscan/slipscan/internal/recognize"
)

// Config holds the scan-window cutoffs. The block counts are heuristic,
// not derived from receipt geometry; they are configurable so they can be
// tuned without code changes.
type Config struct {
	MerchantBlocks     int `mapstructure:"merchant_blocks" yaml:"merchant_blocks" json:"merchant_blocks"`
	DateBlocks         int `mapstructure:"date_blocks" yaml:"date_blocks" json:"date_blocks"`
	TimeBlocksFallback int `mapstructure:"time_blocks_fallback" yaml:"time_blocks_fallback" json:"time_blocks_fallback"`
	ItemSkipHead       int `mapstructure:"item_skip_head" yaml:"item_skip_head" json:"item_skip_head"`
	ItemSkipTail       int `mapstructure:"item_skip_tail" yaml:"item_skip_tail" json:"item_skip_tail"`
}

// DefaultConfig returns the tuned scan windows.
func DefaultConfig() Config {
	return Config{
		MerchantBlocks:     5,
		DateBlocks:         8,
		TimeBlocksFallback: 10,
		ItemSkipHead:       3,
		ItemSkipTail:       5,
	}
}

// Engine maps recognition output to an extracted receipt. It is stateless
// and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an extraction engine with the given scan windows.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Extract runs every field heuristic over the recognition result. The
// output is deterministic: identical input always yields an identical
// receipt.
func (e *Engine) Extract(res *recognize.Result) *receipt.Receipt {
	out := &receipt.Receipt{}
	if res == nil {
		return out
	}
	out.RawText = res.FullText

	lines := flattenLines(res.Blocks)

	totalCand, _ := extractTotal(lines)
	var totalConf float64
	if totalCand != nil {
		v := totalCand.value
		out.Total = &v
		totalConf = totalCand.confidence
	}
	out.Subtotal = extractLabeledAmount(lines, subtotalKeywords)
	out.Tax = extractLabeledAmount(lines, taxKeywords)
	out.Tip = extractLabeledAmount(lines, tipKeywords)
	out.Discount = extractLabeledAmount(lines, discountKeywords)

	merchant, merchantConf := extractMerchant(res.Blocks, e.cfg.MerchantBlocks)
	out.Merchant = merchant
	if merchant != "" {
		out.Category = receipt.CategoryFor(merchant)
	}

	date, dateConf := extractDate(res.Blocks, e.cfg.DateBlocks)
	out.Date = date
	out.Time = extractTime(res.Blocks, e.cfg.DateBlocks, e.cfg.TimeBlocksFallback)

	out.Items = extractItems(res.Blocks, e.cfg.ItemSkipHead, e.cfg.ItemSkipTail)
	out.Phone = extractPhone(lines)
	out.Address = extractAddress(lines)
	out.PaymentMethod = extractPaymentMethod(lines)

	out.Confidence = overallConfidence(totalConf, merchantConf, dateConf)

	slog.Debug("extraction completed",
		"merchant", out.Merchant,
		"has_total", out.Total != nil,
		"items", len(out.Items),
		"confidence", out.Confidence)
	return out
}

// flattenLines produces document-ordered scan lines tagged with their block
// index.
func flattenLines(blocks []recognize.TextBlock) []scanLine {
	var out []scanLine
	idx := 0
	for bi, b := range blocks {
		for _, ln := range b.Lines {
			text := strings.TrimSpace(ln.Text)
			if text == "" {
				continue
			}
			out = append(out, scanLine{text: text, block: bi, line: idx})
			idx++
		}
	}
	return out
}

// overallConfidence averages the confidences of the three anchor fields.
// Fields that were not found contribute zero, dragging the average down,
// which is the intended signal for a poorly recognized document.
func overallConfidence(total, merchant, date float64) float64 {
	return clampConfidence((total + merchant + date) / 3)
}
