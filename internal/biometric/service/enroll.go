package service

import (
	"context"
	"time"

	"github.com/samber/mo"

	"biogate/internal/audit"
	"biogate/internal/biometric/codec"
	"biogate/internal/biometric/models"
	"biogate/internal/biometric/quality"
	"biogate/internal/biometric/store"
	"biogate/internal/platform/privacy"
	"biogate/internal/platform/tracer"
	dErrors "biogate/pkg/domain-errors"
	platformsync "biogate/pkg/platform/sync"
	"biogate/pkg/requestcontext"
)

const opEnroll = "enroll"

// Enroll extracts a template from image, encrypts it and stores it as the
// user's active template for modality, replacing any previous one in place.
// Nothing is persisted unless every pipeline step succeeds.
func (s *Service) Enroll(ctx context.Context, userID string, modality models.Modality, image []byte) (result *models.EnrollResult, err error) {
	start := time.Now()
	defer s.observeLatency(opEnroll, start)

	ctx, span := s.tracer.Start(ctx, tracer.SpanEnroll,
		tracer.String(tracer.AttrUserHash, privacy.HashUserID(userID)),
		tracer.String(tracer.AttrModality, modality.String()),
	)
	defer func() { span.End(err) }()

	if err := validateRequest(userID, modality); err != nil {
		return nil, s.handleError(ctx, opEnroll, err)
	}

	ext, err := s.extractor.Extract(ctx, modality, image)
	if err != nil {
		return nil, s.handleError(ctx, opEnroll, err, "modality", modality)
	}
	q := store.RoundQuality(quality.Assess(modality, ext.Raster))

	ciphertext, err := s.cipher.Encrypt(codec.EncodeBytes(ext.Features))
	if err != nil {
		return nil, s.handleError(ctx, opEnroll, err, "modality", modality)
	}

	var (
		previous mo.Option[models.BiometricTemplate]
		id       models.TemplateID
	)
	err = s.enrollLocks.DoContext(ctx, platformsync.Key(userID, modality.String()), func() error {
		var err error
		if previous, err = s.store.Fetch(ctx, userID, modality); err != nil {
			return err
		}
		id, err = s.store.Upsert(ctx, userID, modality, ciphertext, q)
		return err
	})
	if err != nil {
		return nil, s.handleError(ctx, opEnroll, err, "modality", modality)
	}

	prev, replaced := previous.Get()
	span.SetAttributes(tracer.Float64(tracer.AttrQuality, q), tracer.Bool(tracer.AttrReplaced, replaced))
	if s.metrics != nil {
		s.metrics.IncrementEnrollments(modality.Label(), replaced)
		s.metrics.ObserveQuality(modality.Label(), q)
	}

	event := audit.Event{
		Action:     audit.ActionTemplateEnrolled,
		UserID:     userID,
		Modality:   modality.String(),
		TemplateID: id.String(),
		Quality:    ptr(q),
	}
	if replaced {
		event.Action = audit.ActionTemplateReplaced
		event.Details = map[string]any{
			"previous_template_id": prev.ID.String(),
			"previous_quality":     prev.Quality,
		}
	}
	s.emitAudit(ctx, event)

	attrs := []any{
		"modality", modality,
		"template_id", id.String(),
		"quality", q,
		"replaced", replaced,
		"request_id", requestcontext.RequestID(ctx),
	}
	switch f := ext.Features.(type) {
	case models.FingerprintFeatures:
		attrs = append(attrs, "minutiae_count", len(f.Minutiae))
	case models.FaceFeatures:
		attrs = append(attrs, "face_bounds", []int{f.Bounds.Min.X, f.Bounds.Min.Y, f.Bounds.Dx(), f.Bounds.Dy()})
	}
	s.logger.InfoContext(ctx, "biometric template enrolled", attrs...)

	return &models.EnrollResult{TemplateID: id, Quality: q, Replaced: replaced}, nil
}

func validateRequest(userID string, modality models.Modality) error {
	if userID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "user_id is required")
	}
	if !modality.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unsupported modality: "+modality.String())
	}
	return nil
}
