package extractor

import (
	"image"

	"github.com/samber/lo"
)

// groupRectangles clusters overlapping raw detections and keeps clusters with
// more than minNeighbors members, each reduced to its average rectangle.
// Clusters are returned in the order their first member was seen.
func groupRectangles(rects []image.Rectangle, minNeighbors int, iou float64) []image.Rectangle {
	labels := make([]int, len(rects))
	for i := range labels {
		labels[i] = i
	}
	find := func(i int) int {
		for labels[i] != i {
			labels[i] = labels[labels[i]]
			i = labels[i]
		}
		return i
	}
	for i := range rects {
		for j := i + 1; j < len(rects); j++ {
			if overlap(rects[i], rects[j]) > iou {
				ri, rj := find(i), find(j)
				if ri != rj {
					labels[max(ri, rj)] = min(ri, rj)
				}
			}
		}
	}

	clusters := lo.GroupBy(lo.Range(len(rects)), find)
	roots := lo.Uniq(lo.Map(lo.Range(len(rects)), func(i, _ int) int { return find(i) }))

	var out []image.Rectangle
	for _, root := range roots {
		members := clusters[root]
		if len(members) <= minNeighbors {
			continue
		}
		var sum image.Rectangle
		for _, m := range members {
			sum.Min = sum.Min.Add(rects[m].Min)
			sum.Max = sum.Max.Add(rects[m].Max)
		}
		n := len(members)
		out = append(out, image.Rect(sum.Min.X/n, sum.Min.Y/n, sum.Max.X/n, sum.Max.Y/n))
	}
	return out
}

func overlap(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	ia := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - ia
	if union <= 0 {
		return 0
	}
	return ia / union
}
