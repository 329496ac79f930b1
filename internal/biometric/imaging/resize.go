package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// CropResize extracts roi from src (clipped to its bounds) and scales it to
// w x h with bilinear interpolation.
func CropResize(src *image.Gray, roi image.Rectangle, w, h int) *image.Gray {
	roi = roi.Intersect(src.Bounds())
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if roi.Empty() {
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), src, roi, draw.Src, nil)
	return dst
}
