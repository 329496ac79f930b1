// Package extractor turns raw sample images into transient feature sets.
package extractor

import (
	"context"
	"fmt"
	"image"

	"biogate/internal/biometric/imaging"
	"biogate/internal/biometric/models"
)

const (
	// BinarizeThreshold separates ridge foreground after enhancement.
	BinarizeThreshold = 127
	// MinRegionArea is the smallest region, in pixels, kept as a minutia.
	MinRegionArea = 50
	// FaceSize is the edge of the normalized face raster.
	FaceSize = 100

	histogramEpsilon = 1e-7
)

// Extraction is the result of processing one sample.
type Extraction struct {
	Features models.Features
	// Raster is the image the quality assessor scores: the enhanced
	// fingerprint or the normalized face crop.
	Raster *image.Gray
}

// Extractor is safe for concurrent use.
type Extractor struct {
	capability *Capability
	clahe      imaging.CLAHEConfig
}

func New(capability *Capability) *Extractor {
	return &Extractor{capability: capability, clahe: imaging.DefaultCLAHE}
}

// Capability exposes the start-up probe result.
func (e *Extractor) Capability() *Capability { return e.capability }

// Extract decodes data and runs the modality pipeline. The context is checked
// between phases.
func (e *Extractor) Extract(ctx context.Context, modality models.Modality, data []byte) (Extraction, error) {
	if err := e.capability.Check(modality); err != nil {
		return Extraction{}, err
	}
	gray, err := imaging.Decode(data)
	if err != nil {
		return Extraction{}, err
	}
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	switch modality {
	case models.ModalityFingerprint:
		return e.fingerprint(ctx, gray)
	case models.ModalityFace:
		return e.face(ctx, gray)
	default:
		return Extraction{}, fmt.Errorf("%w: unsupported modality %q", models.ErrCapabilityUnavailable, modality)
	}
}

func (e *Extractor) fingerprint(ctx context.Context, gray *image.Gray) (Extraction, error) {
	enhanced := imaging.CLAHE(imaging.GaussianBlur5(gray), e.clahe)
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	minutiae := make([]models.Point, 0, models.MaxMinutiae)
	for _, region := range imaging.Regions(imaging.Threshold(enhanced, BinarizeThreshold)) {
		if region.Area() <= MinRegionArea {
			continue
		}
		x, y, ok := region.Centroid()
		if !ok {
			continue
		}
		minutiae = append(minutiae, models.Point{X: x, Y: y})
		if len(minutiae) == models.MaxMinutiae {
			break
		}
	}

	return Extraction{
		Features: models.FingerprintFeatures{Minutiae: minutiae},
		Raster:   enhanced,
	}, nil
}

func (e *Extractor) face(ctx context.Context, gray *image.Gray) (Extraction, error) {
	detector, err := e.capability.faceDetector()
	if err != nil {
		return Extraction{}, err
	}
	faces, err := detector.Detect(ctx, gray)
	if err != nil {
		return Extraction{}, fmt.Errorf("detecting faces: %w", err)
	}
	switch {
	case len(faces) == 0:
		return Extraction{}, models.ErrNoFaceDetected
	case len(faces) > 1:
		return Extraction{}, models.ErrMultipleFacesDetected
	}

	roi := imaging.CropResize(gray, faces[0], FaceSize, FaceSize)
	return Extraction{
		Features: models.FaceFeatures{
			Histogram: normalizedHistogram(roi),
			Bounds:    faces[0],
		},
		Raster: roi,
	}, nil
}

func normalizedHistogram(roi *image.Gray) [models.HistogramBins]float32 {
	counts := imaging.Histogram(roi)
	total := 0
	for _, c := range counts {
		total += c
	}
	denom := float64(total) + histogramEpsilon

	var hist [models.HistogramBins]float32
	for i, c := range counts {
		hist[i] = float32(float64(c) / denom)
	}
	return hist
}
