package service

import (
	"context"
	"errors"
	"log/slog"

	"biogate/internal/biometric/models"
	"biogate/internal/sentinel"
	dErrors "biogate/pkg/domain-errors"
)

// Pipeline error handling: component and store errors are translated into
// domain errors here and nowhere else.

type errorMapping struct {
	cause error
	code  dErrors.Code
	msg   string
	level slog.Level
}

// errorMappings is checked in order; first match wins.
var errorMappings = []errorMapping{
	{models.ErrCapabilityUnavailable, dErrors.CodeCapabilityUnavailable, "biometric processing is unavailable for this modality", slog.LevelWarn},
	{models.ErrInvalidImage, dErrors.CodeInvalidImage, "invalid image data", slog.LevelInfo},
	{models.ErrNoFaceDetected, dErrors.CodeNoFaceDetected, "no face detected in image", slog.LevelInfo},
	{models.ErrMultipleFacesDetected, dErrors.CodeMultipleFaces, "multiple faces detected - please use image with single face", slog.LevelInfo},
	{models.ErrDecryptionFailed, dErrors.CodeDecryptionFailed, "stored template could not be decrypted", slog.LevelError},
	{models.ErrMalformedTemplate, dErrors.CodeMalformedTemplate, "stored template is malformed", slog.LevelError},
	{sentinel.ErrUnavailable, dErrors.CodeStorage, "template store unavailable", slog.LevelError},
	{context.DeadlineExceeded, dErrors.CodeTimeout, "request timed out", slog.LevelWarn},
	{context.Canceled, dErrors.CodeTimeout, "request cancelled", slog.LevelInfo},
}

var errNotEnrolled = dErrors.New(dErrors.CodeNotEnrolled, "no active template enrolled for this user and modality")

// handleError translates err into a domain error, logging and counting it
// once. Domain errors pass through with their code.
func (s *Service) handleError(ctx context.Context, op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}

	var de *dErrors.Error
	if errors.As(err, &de) {
		s.recordFailure(ctx, op, de.Code, slog.LevelInfo, err, attrs...)
		return err
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.cause) {
			s.recordFailure(ctx, op, m.code, m.level, err, attrs...)
			return dErrors.Wrap(err, m.code, m.msg)
		}
	}

	s.recordFailure(ctx, op, dErrors.CodeInternal, slog.LevelError, err, attrs...)
	return dErrors.Wrap(err, dErrors.CodeInternal, "biometric operation failed")
}

func (s *Service) recordFailure(ctx context.Context, op string, code dErrors.Code, level slog.Level, err error, attrs ...any) {
	if s.metrics != nil {
		s.metrics.IncrementFailures(op, string(code))
	}
	if s.logger != nil {
		args := append([]any{"operation", op, "code", string(code), "error", err}, attrs...)
		s.logger.Log(ctx, level, "biometric operation failed", args...)
	}
}
