package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/jtejido/go-wsq"
	_ "github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"biogate/internal/biometric/models"
)

// wsqMagic is the WSQ start-of-image marker.
const wsqMagic = "\xff\xa0"

func init() {
	image.RegisterFormat("wsq", wsqMagic, wsq.Decode, decodeWSQConfig)
}

// decodeWSQConfig decodes the whole image; the WSQ frame header sits behind
// the transform and quantization tables and the decoder does not expose it.
func decodeWSQConfig(r io.Reader) (image.Config, error) {
	img, err := wsq.Decode(r)
	if err != nil {
		return image.Config{}, err
	}
	b := img.Bounds()
	return image.Config{ColorModel: color.GrayModel, Width: b.Dx(), Height: b.Dy()}, nil
}

// Decode turns encoded image bytes into a grayscale raster anchored at the origin.
// Any failure, including an empty raster, is reported as models.ErrInvalidImage.
func Decode(data []byte) (*image.Gray, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", models.ErrInvalidImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidImage, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s image has no pixels", models.ErrInvalidImage, format)
	}
	return ToGray(img), nil
}

// ToGray converts any image to *image.Gray with bounds starting at (0,0).
// Color images use the ITU-R BT.601 luma weights of color.GrayModel.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
