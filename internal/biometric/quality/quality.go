// Package quality scores how usable a processed sample is, in [0, 1].
package quality

import (
	"image"
	"math"

	"biogate/internal/biometric/imaging"
	"biogate/internal/biometric/models"
)

const (
	fingerprintSharpnessScale = 100.0
	faceSharpnessScale        = 200.0
	// faceTargetBrightness is the mean intensity that scores full brightness.
	faceTargetBrightness = 140.0
)

// Assess scores raster for modality. Fingerprints are scored on Laplacian
// sharpness alone; faces average sharpness with closeness to a target
// brightness. Unknown modalities score 0.
func Assess(modality models.Modality, raster *image.Gray) float64 {
	switch modality {
	case models.ModalityFingerprint:
		return Fingerprint(raster)
	case models.ModalityFace:
		return Face(raster)
	default:
		return 0
	}
}

func Fingerprint(raster *image.Gray) float64 {
	return unit(imaging.LaplacianVariance(raster) / fingerprintSharpnessScale)
}

func Face(raster *image.Gray) float64 {
	sharpness := unit(imaging.LaplacianVariance(raster) / faceSharpnessScale)
	brightness := unit(1 - math.Abs(imaging.Mean(raster)-faceTargetBrightness)/faceTargetBrightness)
	return unit((sharpness + brightness) / 2)
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return imaging.Clamp(v, 0, 1)
}
