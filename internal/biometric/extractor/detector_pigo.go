//go:build !gocv

package extractor

import (
	"context"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
	"github.com/samber/lo"
)

const (
	pigoShiftFactor = 0.1
	// pigoMinQuality drops raw hits the cascade is not confident about.
	pigoMinQuality = 0
	// pigoGroupIoU is the overlap above which two raw hits describe the same face.
	pigoGroupIoU = 0.2
)

// PigoDetector runs a pico cascade in pure Go.
type PigoDetector struct {
	classifier *pigo.Pigo
	params     DetectorParams
}

// LoadFaceDetector reads and unpacks the cascade at path.
func LoadFaceDetector(path string, params DetectorParams) (FaceDetector, error) {
	if path == "" {
		return nil, fmt.Errorf("face cascade path is empty")
	}
	packet, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading face cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(packet)
	if err != nil {
		return nil, fmt.Errorf("unpacking face cascade: %w", err)
	}
	return &PigoDetector{classifier: classifier, params: params}, nil
}

func (d *PigoDetector) Detect(ctx context.Context, img *image.Gray) ([]image.Rectangle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b := img.Bounds()
	cols, rows := b.Dx(), b.Dy()
	pixels := make([]uint8, cols*rows)
	for y := 0; y < rows; y++ {
		copy(pixels[y*cols:(y+1)*cols], img.Pix[y*img.Stride:y*img.Stride+cols])
	}

	raw := d.classifier.RunCascade(pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     max(cols, rows),
		ShiftFactor: pigoShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}, 0.0)

	hits := lo.FilterMap(raw, func(det pigo.Detection, _ int) (image.Rectangle, bool) {
		if det.Q <= pigoMinQuality {
			return image.Rectangle{}, false
		}
		half := det.Scale / 2
		r := image.Rect(det.Col-half, det.Row-half, det.Col+half, det.Row+half)
		return r.Intersect(image.Rect(0, 0, cols, rows)), true
	})
	return groupRectangles(hits, d.params.MinNeighbors, pigoGroupIoU), nil
}

func (d *PigoDetector) Close() error { return nil }
