package models

import "errors"

// Pipeline errors returned by extraction, codec and cipher components.
// The service maps them onto domain error codes.
var (
	ErrInvalidImage          = errors.New("invalid image data")
	ErrNoFaceDetected        = errors.New("no face detected in image")
	ErrMultipleFacesDetected = errors.New("multiple faces detected - please use image with single face")
	ErrCapabilityUnavailable = errors.New("image processing capability unavailable")
	ErrMalformedTemplate     = errors.New("malformed template")
	ErrDecryptionFailed      = errors.New("template decryption failed")
)
