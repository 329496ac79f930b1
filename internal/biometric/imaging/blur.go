package imaging

import "image"

// gaussian5 is the default 5-tap kernel used when sigma is derived from the
// kernel size (sigma ~ 1.1): binomial weights 1 4 6 4 1 over 16.
var gaussian5 = [5]float64{0.0625, 0.25, 0.375, 0.25, 0.0625}

// GaussianBlur5 smooths src with the separable 5x5 Gaussian kernel.
func GaussianBlur5(src *image.Gray) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			var acc float64
			for k := -2; k <= 2; k++ {
				acc += gaussian5[k+2] * float64(row[reflect101(x+k, w)])
			}
			tmp[y*w+x] = acc
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var acc float64
			for k := -2; k <= 2; k++ {
				acc += gaussian5[k+2] * tmp[reflect101(y+k, h)*w+x]
			}
			dst.Pix[y*dst.Stride+x] = saturate(acc)
		}
	}
	return dst
}
