package models

import "image"

// Features is the transient feature set produced by extraction. Implementations
// are FingerprintFeatures and FaceFeatures; the interface is sealed.
type Features interface {
	Modality() Modality
	isFeatures()
}

// Point is a minutia position in raster coordinates.
type Point struct {
	X int
	Y int
}

// FingerprintFeatures holds minutiae in detection order, at most MaxMinutiae.
type FingerprintFeatures struct {
	Minutiae []Point
}

func (FingerprintFeatures) Modality() Modality { return ModalityFingerprint }
func (FingerprintFeatures) isFeatures()        {}

// FaceFeatures holds the normalized grayscale histogram of the detected face.
type FaceFeatures struct {
	Histogram [HistogramBins]float32
	// Bounds is the detected face rectangle in the source image.
	Bounds image.Rectangle
}

func (FaceFeatures) Modality() Modality { return ModalityFace }
func (FaceFeatures) isFeatures()        {}
