package imaging

import (
	"image"
	"math"
)

const histSize = 256

// CLAHEConfig parameterizes contrast-limited adaptive histogram equalization.
type CLAHEConfig struct {
	ClipLimit float64
	TilesX    int
	TilesY    int
}

// DefaultCLAHE is the enhancement used for fingerprint rasters.
var DefaultCLAHE = CLAHEConfig{ClipLimit: 2.0, TilesX: 8, TilesY: 8}

// CLAHE equalizes src tile by tile, clipping each tile histogram and
// redistributing the excess before building the lookup table. Output pixels
// are bilinearly interpolated between the four nearest tile tables.
//
// When the raster size is not a multiple of the grid, tiles are computed over
// a reflect-101 padded extent so every tile has the same area.
func CLAHE(src *image.Gray, cfg CLAHEConfig) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tilesX, tilesY := max(cfg.TilesX, 1), max(cfg.TilesY, 1)

	tileW := (w + tilesX - 1) / tilesX
	tileH := (h + tilesY - 1) / tilesY
	tileArea := tileW * tileH

	clip := 0
	if cfg.ClipLimit > 0 {
		clip = max(int(cfg.ClipLimit*float64(tileArea)/histSize), 1)
	}
	lutScale := 255.0 / float64(tileArea)

	luts := make([][histSize]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			var hist [histSize]int
			for y := ty * tileH; y < (ty+1)*tileH; y++ {
				row := src.Pix[reflect101(y, h)*src.Stride:]
				for x := tx * tileW; x < (tx+1)*tileW; x++ {
					hist[row[reflect101(x, w)]]++
				}
			}
			if clip > 0 {
				clipHistogram(&hist, clip)
			}
			lut := &luts[ty*tilesX+tx]
			sum := 0
			for i := range hist {
				sum += hist[i]
				lut[i] = saturate(float64(sum) * lutScale)
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	invTW, invTH := 1/float64(tileW), 1/float64(tileH)
	for y := 0; y < h; y++ {
		tyf := float64(y)*invTH - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := min(ty1+1, tilesY-1)
		ty1 = max(ty1, 0)

		srcRow := src.Pix[y*src.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			txf := float64(x)*invTW - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := min(tx1+1, tilesX-1)
			tx1 = max(tx1, 0)

			v := srcRow[x]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bottom := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			dstRow[x] = saturate(top*(1-ya) + bottom*ya)
		}
	}
	return dst
}

func clipHistogram(hist *[histSize]int, clip int) {
	clipped := 0
	for i := range hist {
		if hist[i] > clip {
			clipped += hist[i] - clip
			hist[i] = clip
		}
	}

	batch := clipped / histSize
	residual := clipped - batch*histSize
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := max(histSize/residual, 1)
		for i := 0; i < histSize && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}
}
