package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jtejido/go-wsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biogate/internal/biometric/models"
)

func filled(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func fillRect(img *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

func TestReflect101(t *testing.T) {
	assert.Equal(t, 1, reflect101(-1, 5))
	assert.Equal(t, 2, reflect101(-2, 5))
	assert.Equal(t, 3, reflect101(5, 5))
	assert.Equal(t, 2, reflect101(6, 5))
	assert.Equal(t, 0, reflect101(-4, 1))
	assert.Equal(t, 1, reflect101(-3, 2))
}

func TestDecode(t *testing.T) {
	t.Run("png becomes origin anchored gray", func(t *testing.T) {
		src := image.NewRGBA(image.Rect(3, 4, 13, 24))
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, src))

		gray, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 10, 20), gray.Bounds())
	})

	t.Run("wsq fingerprint", func(t *testing.T) {
		src := image.NewGray(image.Rect(0, 0, 256, 192))
		for y := 0; y < 192; y++ {
			for x := 0; x < 256; x++ {
				if (x/6)%2 == 0 {
					src.SetGray(x, y, color.Gray{Y: 200})
				} else {
					src.SetGray(x, y, color.Gray{Y: 60})
				}
			}
		}
		var buf bytes.Buffer
		require.NoError(t, wsq.Encode(&buf, src, &wsq.Options{}))

		cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, "wsq", format)
		assert.Equal(t, 256, cfg.Width)
		assert.Equal(t, 192, cfg.Height)

		gray, err := Decode(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 256, 192), gray.Bounds())
		assert.InDelta(t, Mean(src), Mean(gray), 10)
	})

	t.Run("truncated wsq is invalid image", func(t *testing.T) {
		_, err := Decode([]byte("\xff\xa0\xff"))
		require.ErrorIs(t, err, models.ErrInvalidImage)
	})

	t.Run("garbage is invalid image", func(t *testing.T) {
		_, err := Decode([]byte("definitely not an image"))
		require.ErrorIs(t, err, models.ErrInvalidImage)
	})

	t.Run("empty payload is invalid image", func(t *testing.T) {
		_, err := Decode(nil)
		require.ErrorIs(t, err, models.ErrInvalidImage)
	})
}

func TestGaussianBlur5(t *testing.T) {
	t.Run("constant raster is unchanged", func(t *testing.T) {
		out := GaussianBlur5(filled(9, 7, 90))
		for _, v := range out.Pix {
			assert.Equal(t, uint8(90), v)
		}
	})

	t.Run("single bright pixel spreads symmetrically", func(t *testing.T) {
		img := filled(9, 9, 0)
		img.SetGray(4, 4, color.Gray{Y: 255})
		out := GaussianBlur5(img)
		// centre weight 0.375^2 * 255 = 35.86
		assert.Equal(t, uint8(36), out.GrayAt(4, 4).Y)
		assert.Equal(t, out.GrayAt(3, 4).Y, out.GrayAt(5, 4).Y)
		assert.Equal(t, out.GrayAt(4, 3).Y, out.GrayAt(4, 5).Y)
		assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	})
}

func TestCLAHE(t *testing.T) {
	img := filled(64, 64, 0)
	fillRect(img, image.Rect(16, 16, 48, 48), 255)

	out := CLAHE(img, DefaultCLAHE)
	require.Equal(t, img.Bounds(), out.Bounds())

	assert.Equal(t, uint8(255), out.GrayAt(32, 32).Y, "saturated pixels stay saturated")
	assert.Less(t, out.GrayAt(2, 2).Y, uint8(127), "background stays below the binarization threshold")
	assert.Less(t, out.GrayAt(60, 8).Y, uint8(127))
}

func TestCLAHE_OddSizes(t *testing.T) {
	img := filled(13, 5, 200)
	out := CLAHE(img, DefaultCLAHE)
	assert.Equal(t, image.Rect(0, 0, 13, 5), out.Bounds())
}

func TestThreshold(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 3, 1))
	img.Pix = []uint8{127, 128, 255}
	out := Threshold(img, 127)
	assert.Equal(t, []uint8{0, 255, 255}, out.Pix)
}

func TestRegions(t *testing.T) {
	img := filled(40, 30, 0)
	fillRect(img, image.Rect(20, 2, 25, 7), 255)   // 5x5 at top right, centroid (22,4)
	fillRect(img, image.Rect(2, 10, 12, 20), 255)  // 10x10, centroid (6.5,14.5) -> (6,14)
	img.SetGray(35, 25, color.Gray{Y: 255})        // single pixel
	img.SetGray(36, 26, color.Gray{Y: 255})        // diagonal neighbour, same region

	regions := Regions(img)
	require.Len(t, regions, 3)

	x, y, ok := regions[0].Centroid()
	require.True(t, ok)
	assert.Equal(t, [2]int{22, 4}, [2]int{x, y})
	assert.Equal(t, 25.0, regions[0].Area())

	x, y, _ = regions[1].Centroid()
	assert.Equal(t, [2]int{6, 14}, [2]int{x, y})
	assert.Equal(t, 100.0, regions[1].Area())

	assert.Equal(t, 2.0, regions[2].Area())
	assert.Equal(t, image.Pt(35, 25), regions[2].Origin)
}

func TestLaplacianVariance(t *testing.T) {
	assert.Zero(t, LaplacianVariance(filled(10, 10, 77)))

	checker := filled(10, 10, 0)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if (x+y)%2 == 0 {
				checker.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	assert.Greater(t, LaplacianVariance(checker), LaplacianVariance(GaussianBlur5(checker)))
}

func TestMeanAndHistogram(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Pix = []uint8{0, 100, 100, 200}
	assert.Equal(t, 100.0, Mean(img))

	hist := Histogram(img)
	assert.Equal(t, 1, hist[0])
	assert.Equal(t, 2, hist[100])
	assert.Equal(t, 1, hist[200])
}

func TestCropResize(t *testing.T) {
	img := filled(50, 40, 180)
	out := CropResize(img, image.Rect(10, 10, 40, 40), 100, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	assert.Equal(t, uint8(180), out.GrayAt(50, 50).Y)

	empty := CropResize(img, image.Rect(100, 100, 120, 120), 100, 100)
	assert.Equal(t, uint8(0), empty.GrayAt(0, 0).Y)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3.5, 0.0, 1.0))
	assert.Equal(t, 0, Clamp(-2, 0, 10))
	assert.Equal(t, 0.25, Clamp(0.25, 0.0, 1.0))
}
