package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
)

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 120, A: 255})
		}
	}
	return img
}

// PNGBytes encodes a w x h PNG.
func PNGBytes(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, solid(w, h))
	return buf.Bytes()
}

// JPEGBytes encodes a w x h JPEG.
func JPEGBytes(w, h int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, solid(w, h), &jpeg.Options{Quality: 80})
	return buf.Bytes()
}
