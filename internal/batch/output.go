package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FormatResults renders the batch results in the given format.
func (r *Result) FormatResults(format string) (string, error) {
	switch format {
	case "", "json":
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return "", fmt.Errorf("encoding results: %w", err)
		}
		return string(data) + "\n", nil
	case "yaml":
		data, err := yaml.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("encoding results: %w", err)
		}
		return string(data), nil
	case "text":
		return r.formatText(), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func (r *Result) formatText() string {
	var b strings.Builder
	for _, f := range r.Files {
		if f.Error != "" {
			fmt.Fprintf(&b, "%s: FAILED (%s)\n", f.Path, f.Error)
			continue
		}
		rec := f.Result.Receipt
		total := "-"
		if rec.Total != nil {
			total = rec.Total.String()
		}
		date := "-"
		if rec.Date != nil {
			date = rec.Date.Format("2006-01-02")
		}
		fmt.Fprintf(&b, "%s: %s  %s  total=%s  items=%d  confidence=%.2f\n",
			f.Path, rec.Merchant, date, total, len(rec.Items), f.Result.Validation.Confidence)
	}
	return b.String()
}

// SaveResults writes the formatted results to a file or stdout.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return err
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("writing output file: %w", err)
		}
		if !quiet {
			fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
	} else {
		fmt.Fprint(os.Stdout, output)
	}

	return nil
}

// SavePerFile writes one JSON file per successfully scanned receipt into
// the output directory, named after the source image.
func (r *Result) SavePerFile(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, f := range r.Files {
		if f.Error != "" {
			continue
		}
		base := filepath.Base(f.Path)
		name := strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
		data, err := json.MarshalIndent(f.Result, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(filepath.Join(outputDir, name), data, 0o600); err != nil {
			return fmt.Errorf("writing result for %s: %w", f.Path, err)
		}
	}
	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}
	avg := time.Duration(0)
	if n := len(r.Files); n > 0 {
		avg = r.Duration / time.Duration(n)
	}
	throughput := 0.0
	if r.Duration > 0 {
		throughput = float64(len(r.Files)) / r.Duration.Seconds()
	}
	fmt.Fprintf(os.Stdout, "\nProcessing Statistics:\n")
	fmt.Fprintf(os.Stdout, "  Total images: %d\n", len(r.Files))
	fmt.Fprintf(os.Stdout, "  Succeeded: %d\n", r.Succeeded)
	fmt.Fprintf(os.Stdout, "  Failed: %d\n", r.Failed)
	fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "  Avg per image: %v\n", avg.Round(time.Millisecond))
	fmt.Fprintf(os.Stdout, "  Throughput: %.1f images/sec\n", throughput)
}
