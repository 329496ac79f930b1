// Package codec converts feature sets to fixed-length templates and back.
//
// The serialized form is the template values as little-endian IEEE-754
// float32, 160 bytes for fingerprints and 1024 bytes for faces.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"biogate/internal/biometric/models"
)

// Encode lays features out as a fixed-length template. Fingerprint minutia i
// occupies slots 2i and 2i+1; minutiae past models.MaxMinutiae are dropped and
// unused slots stay zero. Face histograms are copied bin for bin.
func Encode(features models.Features) models.Template {
	switch f := features.(type) {
	case models.FingerprintFeatures:
		values := make([]float32, models.FingerprintTemplateLen)
		for i, p := range f.Minutiae {
			if i >= models.MaxMinutiae {
				break
			}
			values[2*i] = float32(p.X)
			values[2*i+1] = float32(p.Y)
		}
		return models.Template{Modality: models.ModalityFingerprint, Values: values}
	case models.FaceFeatures:
		values := make([]float32, models.FaceTemplateLen)
		copy(values, f.Histogram[:])
		return models.Template{Modality: models.ModalityFace, Values: values}
	default:
		panic(fmt.Sprintf("codec: unknown feature set %T", features))
	}
}

// Marshal serializes t.
func Marshal(t models.Template) []byte {
	out := make([]byte, 4*len(t.Values))
	for i, v := range t.Values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// Decode parses a serialized template for modality. The byte length must match
// the modality exactly.
func Decode(data []byte, modality models.Modality) (models.Template, error) {
	size := modality.TemplateSize()
	if size == 0 {
		return models.Template{}, fmt.Errorf("%w: unknown modality %q", models.ErrMalformedTemplate, modality)
	}
	if len(data) != size {
		return models.Template{}, fmt.Errorf("%w: %s template is %d bytes, want %d",
			models.ErrMalformedTemplate, modality, len(data), size)
	}
	values := make([]float32, modality.TemplateLen())
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return models.Template{Modality: modality, Values: values}, nil
}

// EncodeBytes is Marshal(Encode(features)).
func EncodeBytes(features models.Features) []byte {
	return Marshal(Encode(features))
}
