package imaging

import "image"

// Foreground is the value written for pixels above the binarization threshold.
const Foreground = 255

// Threshold binarizes src: pixels strictly greater than t become Foreground,
// all others 0.
func Threshold(src *image.Gray, t uint8) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			if srcRow[x] > t {
				dstRow[x] = Foreground
			}
		}
	}
	return dst
}
