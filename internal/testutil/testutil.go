// Package testutil provides synthetic receipt fixtures for tests: rendered
// receipt images and canned receipt text layouts.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ReceiptImageConfig holds configuration for rendering a receipt image.
type ReceiptImageConfig struct {
	Lines      []string
	Width      int
	LineHeight int
	Margin     int
	Background color.Color
	Foreground color.Color
	Rotation   float64 // degrees
}

// DefaultReceiptImageConfig returns a narrow white receipt layout.
func DefaultReceiptImageConfig() ReceiptImageConfig {
	return ReceiptImageConfig{
		Lines:      GroceryReceiptLines(),
		Width:      320,
		LineHeight: 16,
		Margin:     12,
		Background: color.White,
		Foreground: color.Black,
	}
}

// RenderReceiptImage draws the configured text lines onto a receipt-shaped
// image, one line per row.
func RenderReceiptImage(cfg ReceiptImageConfig) image.Image {
	if cfg.Width <= 0 {
		cfg.Width = 320
	}
	if cfg.LineHeight <= 0 {
		cfg.LineHeight = 16
	}
	height := 2*cfg.Margin + cfg.LineHeight*(len(cfg.Lines)+1)
	img := image.NewRGBA(image.Rect(0, 0, cfg.Width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{cfg.Foreground},
		Face: basicfont.Face7x13,
	}
	for i, line := range cfg.Lines {
		drawer.Dot = fixed.P(cfg.Margin, cfg.Margin+(i+1)*cfg.LineHeight)
		drawer.DrawString(line)
	}

	if cfg.Rotation != 0 {
		return imaging.Rotate(img, cfg.Rotation, cfg.Background)
	}
	return img
}

// GroceryReceiptLines returns a plausible grocery receipt layout.
func GroceryReceiptLines() []string {
	return []string{
		"FRESH MART GROCERY",
		"123 Main Street",
		"Springfield IL 62704",
		"(555) 123-4567",
		"",
		"Date: 2024-03-15  14:32",
		"",
		"Milk 2% Gallon        3.49",
		"Bread Whole Wheat     2.79",
		"2 x Eggs Dozen 4.25   8.50",
		"Bananas               1.23",
		"",
		"Subtotal             16.01",
		"Tax                   1.28",
		"Total                17.29",
		"",
		"VISA CREDIT ****1234",
		"Thank you for shopping!",
	}
}

// CafeReceiptLines returns a small cafe receipt with a tip line.
func CafeReceiptLines() []string {
	return []string{
		"BLUE DOOR CAFE",
		"42 Oak Avenue",
		"",
		"03/15/2024 09:12 AM",
		"",
		"Latte                 4.50",
		"Croissant             3.25",
		"",
		"Subtotal              7.75",
		"Tax                   0.62",
		"Tip                   1.50",
		"Total                 9.87",
		"",
		"Thank you!",
	}
}

// WriteTempImage saves the image as PNG into a temp dir owned by the test
// and returns its path.
func WriteTempImage(t *testing.T, img image.Image, name string) string {
	t.Helper()
	if !strings.HasSuffix(name, ".png") {
		name += ".png"
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

// WriteImageTo saves the image as PNG at the given path, creating parent
// directories as needed.
func WriteImageTo(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, imaging.Save(img, path))
}
