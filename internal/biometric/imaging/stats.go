package imaging

import "image"

// LaplacianVariance returns the population variance of the 4-neighbour
// Laplacian response (kernel 0 1 0 / 1 -4 1 / 0 1 0). Higher means sharper.
func LaplacianVariance(src *image.Gray) float64 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	n := float64(w * h)
	if n == 0 {
		return 0
	}
	at := func(x, y int) float64 {
		return float64(src.Pix[reflect101(y, h)*src.Stride+reflect101(x, w)])
	}

	var sum, sumSq float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := at(x, y-1) + at(x-1, y) + at(x+1, y) + at(x, y+1) - 4*at(x, y)
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / n
	return sumSq/n - mean*mean
}

// Mean returns the average intensity of src.
func Mean(src *image.Gray) float64 {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w*h == 0 {
		return 0
	}
	var sum float64
	for y := 0; y < h; y++ {
		for _, v := range src.Pix[y*src.Stride : y*src.Stride+w] {
			sum += float64(v)
		}
	}
	return sum / float64(w*h)
}

// Histogram counts pixel intensities into 256 bins.
func Histogram(src *image.Gray) [histSize]int {
	var hist [histSize]int
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		for _, v := range src.Pix[y*src.Stride : y*src.Stride+w] {
			hist[v]++
		}
	}
	return hist
}
