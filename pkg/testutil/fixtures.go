// Package testutil holds fixtures shared by biometric tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// SquareSide is the edge of each synthetic ridge square; large enough that
// every square survives the minimum region area.
const SquareSide = 21

// FiveMinutiae are square centres on distinct rows, so detection order equals
// slice order.
var FiveMinutiae = []image.Point{{20, 15}, {60, 40}, {100, 65}, {30, 90}, {90, 115}}

// FingerprintPNG renders white SquareSide squares centred on centres over a
// black w x h canvas.
func FingerprintPNG(w, h int, centres ...image.Point) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	half := SquareSide / 2
	for _, c := range centres {
		for y := c.Y - half; y <= c.Y+half; y++ {
			for x := c.X - half; x <= c.X+half; x++ {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return mustPNG(img)
}

// GradientPNG renders a deterministic non-flat grayscale image.
func GradientPNG(w, h int) []byte {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	return mustPNG(img)
}

func mustPNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
