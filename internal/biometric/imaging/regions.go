package imaging

import (
	"image"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Region is an 8-connected foreground component summarized by its raw
// spatial moments.
type Region struct {
	// Origin is the first pixel of the region in raster order.
	Origin image.Point
	M00    float64
	M10    float64
	M01    float64
}

// Area is the pixel count of the region.
func (r Region) Area() float64 { return r.M00 }

// Centroid returns (m10/m00, m01/m00) truncated toward zero. ok is false for
// an empty region.
func (r Region) Centroid() (x, y int, ok bool) {
	if r.M00 == 0 {
		return 0, 0, false
	}
	return int(r.M10 / r.M00), int(r.M01 / r.M00), true
}

var neighbors8 = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Regions labels the non-zero pixels of a binary raster into 8-connected
// components. Components are returned in detection order: the raster-order
// position of their first pixel.
func Regions(binary *image.Gray) []Region {
	w, h := binary.Rect.Dx(), binary.Rect.Dy()
	visited := make([]bool, w*h)
	stack := arraystack.New()

	var regions []Region
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || binary.Pix[y*binary.Stride+x] == 0 {
				continue
			}
			region := Region{Origin: image.Pt(x, y)}
			visited[y*w+x] = true
			stack.Push(image.Pt(x, y))
			for !stack.Empty() {
				v, _ := stack.Pop()
				p := v.(image.Point)
				region.M00++
				region.M10 += float64(p.X)
				region.M01 += float64(p.Y)
				for _, d := range neighbors8 {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					idx := ny*w + nx
					if visited[idx] || binary.Pix[ny*binary.Stride+nx] == 0 {
						continue
					}
					visited[idx] = true
					stack.Push(image.Pt(nx, ny))
				}
			}
			regions = append(regions, region)
		}
	}
	return regions
}
