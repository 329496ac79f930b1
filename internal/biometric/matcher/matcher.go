// Package matcher scores candidate templates against enrolled ones and applies
// the per-modality acceptance thresholds.
package matcher

import (
	"math"

	"biogate/internal/biometric/models"
)

// Acceptance thresholds. A score must be strictly greater to verify.
const (
	FingerprintThreshold = 0.70
	FaceThreshold        = 0.75
)

// Threshold returns the acceptance threshold for modality. Unknown modalities
// get +Inf so nothing verifies.
func Threshold(modality models.Modality) float64 {
	switch modality {
	case models.ModalityFingerprint:
		return FingerprintThreshold
	case models.ModalityFace:
		return FaceThreshold
	default:
		return math.Inf(1)
	}
}

// Verified applies the strict acceptance rule.
func Verified(modality models.Modality, score float64) bool {
	return score > Threshold(modality)
}

// Compare scores two templates in [0, 1]. Templates of different length are
// compared over their common prefix. Degenerate inputs score 0.
func Compare(modality models.Modality, a, b models.Template) float64 {
	n := min(len(a.Values), len(b.Values))
	x, y := a.Values[:n], b.Values[:n]
	switch modality {
	case models.ModalityFingerprint:
		return Cosine(x, y)
	case models.ModalityFace:
		return Correlation(x, y)
	default:
		return 0
	}
}

// Cosine is the cosine similarity of x and y with negative values floored at 0.
// A zero-norm vector scores 0.
func Cosine(x, y []float32) float64 {
	var dot, nx, ny float64
	for i := range x {
		a, b := float64(x[i]), float64(y[i])
		dot += a * b
		nx += a * a
		ny += b * b
	}
	if nx == 0 || ny == 0 {
		return 0
	}
	return bounded(dot / (math.Sqrt(nx) * math.Sqrt(ny)))
}

// Correlation maps the Pearson coefficient r of x and y to (r+1)/2. An
// undefined coefficient, as for constant vectors, scores 0.
func Correlation(x, y []float32) float64 {
	n := float64(len(x))
	if n < 2 {
		return 0
	}
	var mx, my float64
	for i := range x {
		mx += float64(x[i])
		my += float64(y[i])
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range x {
		dx, dy := float64(x[i])-mx, float64(y[i])-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	r := cov / math.Sqrt(vx*vy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return bounded((r + 1) / 2)
}

func bounded(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
