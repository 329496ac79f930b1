package extractor

import (
	"context"
	"image"
)

// DetectorParams mirrors the classic multi-scale cascade knobs.
type DetectorParams struct {
	// ScaleFactor is the ratio between successive detection window sizes.
	ScaleFactor float64
	// MinNeighbors is how many overlapping raw hits a face needs.
	MinNeighbors int
	// MinSize is the smallest face edge in pixels.
	MinSize int
}

// DefaultDetectorParams is scale 1.3, 5 neighbours, 30x30 minimum.
var DefaultDetectorParams = DetectorParams{ScaleFactor: 1.3, MinNeighbors: 5, MinSize: 30}

// FaceDetector finds face rectangles in a grayscale raster.
type FaceDetector interface {
	Detect(ctx context.Context, img *image.Gray) ([]image.Rectangle, error)
	Close() error
}
