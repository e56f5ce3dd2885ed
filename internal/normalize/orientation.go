package normalize

import (
	"image"
	"sync"

	"github.com/disintegration/imaging"
)

// rotationAngles are the four orientation candidates, in preference order.
// Ties keep the earlier candidate, so an already-upright image wins.
var rotationAngles = [4]int{0, 90, 180, 270}

// orientationStep renders the four rotation candidates, scores each by how
// receipt-like its proportions are, and keeps the best. Candidates are
// rendered concurrently; scoring is deterministic so the winner does not
// depend on goroutine order.
func orientationStep(img image.Image) (image.Image, float64, error) {
	type candidate struct {
		img   image.Image
		score float64
	}
	var cands [4]candidate
	var wg sync.WaitGroup
	for i, angle := range rotationAngles {
		wg.Add(1)
		go func(i, angle int) {
			defer wg.Done()
			rotated := rotate(img, angle)
			cands[i] = candidate{img: rotated, score: aspectScore(rotated)}
		}(i, angle)
	}
	wg.Wait()

	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].score > cands[best].score {
			best = i
		}
	}
	return cands[best].img, cands[best].score, nil
}

func rotate(img image.Image, angle int) image.Image {
	switch angle {
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	default:
		return img
	}
}

// aspectScore favors portrait proportions: receipts are taller than wide,
// so a height/width ratio between 1.0 and 4.0 scores highest. Landscape
// ratios score below portrait ones, which is what lets a sideways photo
// rotate upright. A band symmetric around 1 (such as [0.5, 2.0]) scores an
// image and its 90° rotation identically, so it can never choose between
// orientation candidates; the band must be one-sided to discriminate.
func aspectScore(img image.Image) float64 {
	b := img.Bounds()
	if b.Dx() == 0 {
		return 0
	}
	ratio := float64(b.Dy()) / float64(b.Dx())
	switch {
	case ratio >= 1.0 && ratio <= 4.0:
		return 1.0
	case ratio < 1.0:
		return ratio
	default:
		return 4.0 / ratio
	}
}
