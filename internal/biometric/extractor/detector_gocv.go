//go:build gocv

package extractor

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// CascadeDetector wraps an OpenCV Haar cascade. The classifier is not safe for
// concurrent use, so calls are serialized.
type CascadeDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
	params     DetectorParams
}

// LoadFaceDetector loads the Haar cascade XML at path.
func LoadFaceDetector(path string, params DetectorParams) (FaceDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		_ = classifier.Close()
		return nil, fmt.Errorf("loading face cascade %q", path)
	}
	return &CascadeDetector{classifier: classifier, params: params}, nil
}

func (d *CascadeDetector) Detect(ctx context.Context, img *image.Gray) ([]image.Rectangle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return nil, fmt.Errorf("converting raster: %w", err)
	}
	defer mat.Close()

	d.mu.Lock()
	defer d.mu.Unlock()
	minSize := image.Pt(d.params.MinSize, d.params.MinSize)
	return d.classifier.DetectMultiScaleWithParams(
		mat, d.params.ScaleFactor, d.params.MinNeighbors, 0, minSize, image.Pt(0, 0),
	), nil
}

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}
