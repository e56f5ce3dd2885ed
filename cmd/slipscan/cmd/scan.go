package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/bmp"
	"gopkg.in/yaml.v3"

	"github.com/slipscan/slipscan/internal/pipeline"
	"github.com/slipscan/slipscan/internal/recognize"
)

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [image]",
	Short: "Scan a single receipt image",
	Long: `Scan one receipt photo and print the extracted record.

Examples:
  slipscan scan receipt.jpg
  slipscan scan receipt.png --format yaml
  slipscan scan receipt.jpg --output record.json --no-deskew`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		opts := cfg.Pipeline.Normalize
		if noDeskew, _ := cmd.Flags().GetBool("no-deskew"); noDeskew {
			opts.Deskew = false
		}
		if binarize, _ := cmd.Flags().GetBool("binarize"); binarize {
			opts.Binarize = true
		}

		format := cfg.Output.Format
		if cmd.Flags().Changed("format") {
			format, _ = cmd.Flags().GetString("format")
		}
		outputFile := cfg.Output.File
		if cmd.Flags().Changed("output") {
			outputFile, _ = cmd.Flags().GetString("output")
		}

		rec := recognize.NewTesseract(recognize.Config{
			Language:    cfg.Pipeline.Recognizer.Language,
			PageSegMode: cfg.Pipeline.Recognizer.PageSegMode,
		})

		pb := pipeline.NewBuilder().
			WithNormalizeOptions(opts).
			WithExtractConfig(cfg.Pipeline.Extract).
			WithRecognizer(rec)
		if cfg.Verbose {
			pb = pb.WithStageCallback(pipeline.LogStageCallback{})
		}
		pl, err := pb.Build()
		if err != nil {
			return fmt.Errorf("building pipeline: %w", err)
		}

		img, err := loadImageFile(args[0])
		if err != nil {
			return err
		}

		res, err := pl.ProcessContext(context.Background(), img)
		if err != nil {
			return err
		}

		output, err := formatScanResult(res, format)
		if err != nil {
			return err
		}
		if outputFile != "" {
			if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
				return fmt.Errorf("writing output file: %w", err)
			}
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	},
}

// loadImageFile reads and decodes an image from disk.
func loadImageFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from CLI arguments
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

// formatScanResult renders a scan result in the requested format.
func formatScanResult(res *pipeline.ScanResult, format string) (string, error) {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding result: %w", err)
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(res)
		if err != nil {
			return "", fmt.Errorf("encoding result: %w", err)
		}
		return string(data), nil
	case "text":
		return formatReceiptText(res), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatReceiptText renders a human-readable summary.
func formatReceiptText(res *pipeline.ScanResult) string {
	var b bytes.Buffer
	r := res.Receipt

	fmt.Fprintf(&b, "Merchant: %s\n", orDash(r.Merchant))
	if r.Date != nil {
		fmt.Fprintf(&b, "Date: %s", r.Date.Format("2006-01-02"))
		if r.Time != "" {
			fmt.Fprintf(&b, " %s", r.Time)
		}
		fmt.Fprintln(&b)
	}
	if r.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", r.Address)
	}
	if r.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", r.Phone)
	}
	if len(r.Items) > 0 {
		fmt.Fprintln(&b, "Items:")
		for _, it := range r.Items {
			if it.Quantity != "" {
				fmt.Fprintf(&b, "  %s x %s  %s\n", it.Quantity, it.Name, it.TotalPrice)
			} else {
				fmt.Fprintf(&b, "  %s  %s\n", it.Name, it.TotalPrice)
			}
		}
	}
	if r.Subtotal != nil {
		fmt.Fprintf(&b, "Subtotal: %s\n", r.Subtotal)
	}
	if r.Tax != nil {
		fmt.Fprintf(&b, "Tax: %s\n", r.Tax)
	}
	if r.Tip != nil {
		fmt.Fprintf(&b, "Tip: %s\n", r.Tip)
	}
	if r.Discount != nil {
		fmt.Fprintf(&b, "Discount: %s\n", r.Discount)
	}
	if r.Total != nil {
		fmt.Fprintf(&b, "Total: %s\n", r.Total)
	}
	if r.PaymentMethod != "" {
		fmt.Fprintf(&b, "Payment: %s\n", r.PaymentMethod)
	}
	if r.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", r.Category)
	}
	fmt.Fprintf(&b, "Valid: %t  Confidence: %.2f\n", res.Validation.Valid, res.Validation.Confidence)
	for _, e := range res.Validation.Errors {
		fmt.Fprintf(&b, "  error [%s] %s: %s\n", e.Severity, e.Field, e.Message)
	}
	for _, w := range res.Validation.Warnings {
		fmt.Fprintf(&b, "  warning %s: %s\n", w.Field, w.Message)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("format", "f", "json", "output format (json, yaml, text)")
	scanCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	scanCmd.Flags().Bool("no-deskew", false, "disable orientation correction")
	scanCmd.Flags().Bool("binarize", false, "enable adaptive binarization")
}
