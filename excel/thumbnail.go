package excel

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

// thumbSize is the bounding box for embedded images, in pixels.
const thumbSize = 125

// fitWithin returns the dimensions of a w×h image shrunk to fit a box×box
// square with the aspect ratio kept. Images that already fit are not
// enlarged.
func fitWithin(w, h, box int) (int, int) {
	if w <= box && h <= box {
		return w, h
	}
	scale := math.Min(float64(box)/float64(w), float64(box)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	return max(nw, 1), max(nh, 1)
}

func loadThumbnail(path string) (image.Image, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	src, _, err := image.Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty image")
	}
	w, h := fitWithin(b.Dx(), b.Dy(), thumbSize)
	if w == b.Dx() && h == b.Dy() {
		return src, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst, nil
}

// displayScale is the factor that stretches px pixels to the fixed display
// box. excelize truncates the scaled size, hence the half pixel.
func displayScale(px int) float64 {
	return (float64(thumbSize) + 0.5) / float64(px)
}
