package quality

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"biogate/internal/biometric/models"
)

func uniform(v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func checkerboard() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if (x+y)%2 == 0 {
				img.Pix[y*img.Stride+x] = 255
			}
		}
	}
	return img
}

func TestFingerprint(t *testing.T) {
	assert.Zero(t, Assess(models.ModalityFingerprint, uniform(90)))
	assert.Equal(t, 1.0, Assess(models.ModalityFingerprint, checkerboard()))
}

func TestFace(t *testing.T) {
	// flat raster at the target brightness: sharpness 0, brightness 1
	assert.InDelta(t, 0.5, Assess(models.ModalityFace, uniform(140)), 1e-9)
	// flat black raster: both terms 0
	assert.Zero(t, Assess(models.ModalityFace, uniform(0)))
	// flat raster at 210: brightness 0.5
	assert.InDelta(t, 0.25, Assess(models.ModalityFace, uniform(210)), 1e-9)

	q := Assess(models.ModalityFace, checkerboard())
	assert.GreaterOrEqual(t, q, 0.5)
	assert.LessOrEqual(t, q, 1.0)
}

func TestUnknownModality(t *testing.T) {
	assert.Zero(t, Assess(models.Modality("IRIS"), checkerboard()))
}
