// Package store persists encrypted biometric templates.
//
// Error contract shared by every backend:
//   - Fetch reports a missing or inactive template as mo.None, not as an error
//   - TouchLastUsed returns sentinel.ErrNotFound for an unknown template id
//   - infrastructure failures are wrapped with sentinel.ErrUnavailable
package store

import "math"

// RoundQuality rounds a quality score to the two fraction digits the
// persisted column holds.
func RoundQuality(q float64) float64 {
	return math.Round(q*100) / 100
}

type key struct {
	userID   string
	modality string
}
