package models

import (
	"fmt"
	"strings"
)

// Modality is the biometric sample type.
type Modality string

const (
	ModalityFingerprint Modality = "FINGERPRINT"
	ModalityFace        Modality = "FACE"
)

const (
	// MaxMinutiae caps the fingerprint point list.
	MaxMinutiae = 20
	// FingerprintTemplateLen is MaxMinutiae points times two coordinates.
	FingerprintTemplateLen = MaxMinutiae * 2
	// HistogramBins is the face histogram resolution.
	HistogramBins = 256
	// FaceTemplateLen equals HistogramBins; bins are copied 1:1.
	FaceTemplateLen = HistogramBins

	bytesPerValue = 4
)

// Modalities lists every supported modality in a stable order.
var Modalities = []Modality{ModalityFingerprint, ModalityFace}

// ParseModality accepts a modality name in any case ("fingerprint", "FACE").
func ParseModality(s string) (Modality, error) {
	m := Modality(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("unsupported modality %q", s)
	}
	return m, nil
}

func (m Modality) IsValid() bool {
	return m == ModalityFingerprint || m == ModalityFace
}

func (m Modality) String() string { return string(m) }

// Label is the lowercase form used in metrics labels and URLs.
func (m Modality) Label() string { return strings.ToLower(string(m)) }

// TemplateLen is the decoded template length (float32 count) for the modality.
// Unknown modalities return 0.
func (m Modality) TemplateLen() int {
	switch m {
	case ModalityFingerprint:
		return FingerprintTemplateLen
	case ModalityFace:
		return FaceTemplateLen
	default:
		return 0
	}
}

// TemplateSize is the serialized template length in bytes.
func (m Modality) TemplateSize() int {
	return m.TemplateLen() * bytesPerValue
}
