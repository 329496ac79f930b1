package extractor

import (
	"fmt"
	"log/slog"

	"github.com/samber/mo"

	"biogate/internal/biometric/models"
)

// Config controls which modalities can be processed on this host.
type Config struct {
	// ImagingDisabled turns off every modality, as on hosts without the
	// imaging stack.
	ImagingDisabled bool
	// FaceCascadePath points at the face detector cascade file.
	FaceCascadePath string
}

type ready struct{}

// Capability records, once at start-up, whether each modality can be
// processed. Requests for an unavailable modality fail fast with
// models.ErrCapabilityUnavailable instead of failing mid-pipeline.
type Capability struct {
	fingerprint mo.Result[ready]
	face        mo.Result[FaceDetector]
}

// LoadCapability probes the imaging dependencies described by cfg. It never
// fails: load errors are kept in the token and logged.
func LoadCapability(cfg Config, logger *slog.Logger) *Capability {
	if cfg.ImagingDisabled {
		err := fmt.Errorf("%w: imaging disabled by configuration", models.ErrCapabilityUnavailable)
		logger.Warn("biometric imaging disabled", "reason", "configuration")
		return &Capability{
			fingerprint: mo.Err[ready](err),
			face:        mo.Err[FaceDetector](err),
		}
	}

	c := &Capability{fingerprint: mo.Ok(ready{})}
	detector, err := LoadFaceDetector(cfg.FaceCascadePath, DefaultDetectorParams)
	if err != nil {
		logger.Error("failed to load face detector", "path", cfg.FaceCascadePath, "error", err)
		c.face = mo.Err[FaceDetector](fmt.Errorf("%w: %v", models.ErrCapabilityUnavailable, err))
		return c
	}
	c.face = mo.Ok(detector)
	return c
}

// NewCapability builds a token with fingerprint processing enabled and the
// given face detector. A nil detector leaves face processing unavailable.
func NewCapability(detector FaceDetector) *Capability {
	c := &Capability{fingerprint: mo.Ok(ready{})}
	if detector == nil {
		c.face = mo.Err[FaceDetector](fmt.Errorf("%w: no face detector", models.ErrCapabilityUnavailable))
	} else {
		c.face = mo.Ok(detector)
	}
	return c
}

// Check returns nil when modality can be processed.
func (c *Capability) Check(modality models.Modality) error {
	switch modality {
	case models.ModalityFingerprint:
		return c.fingerprint.Error()
	case models.ModalityFace:
		return c.face.Error()
	default:
		return fmt.Errorf("%w: unsupported modality %q", models.ErrCapabilityUnavailable, modality)
	}
}

// Available lists modalities that pass Check.
func (c *Capability) Available() []models.Modality {
	var out []models.Modality
	for _, m := range models.Modalities {
		if c.Check(m) == nil {
			out = append(out, m)
		}
	}
	return out
}

func (c *Capability) faceDetector() (FaceDetector, error) {
	return c.face.Get()
}

// Close releases the face detector, if one was loaded.
func (c *Capability) Close() error {
	detector, err := c.face.Get()
	if err != nil {
		return nil
	}
	return detector.Close()
}
