package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"

	"biogate/internal/audit"
	"biogate/internal/biometric/codec"
	"biogate/internal/biometric/extractor"
	"biogate/internal/biometric/matcher"
	"biogate/internal/biometric/models"
	"biogate/internal/biometric/quality"
	"biogate/internal/biometric/store"
	"biogate/internal/platform/privacy"
	"biogate/internal/platform/tracer"
	"biogate/pkg/requestcontext"
)

const opVerify = "verify"

// errStopExtraction cancels in-flight extraction once the fetch has already
// decided the outcome.
var errStopExtraction = errors.New("verification outcome decided by store")

// Verify compares image against the user's active template for modality.
//
// Extraction and the store fetch run concurrently. Failures are reported in a
// fixed order regardless of which finishes first: capability, then missing
// enrollment or storage, then image errors, then decryption, then decoding.
func (s *Service) Verify(ctx context.Context, userID string, modality models.Modality, image []byte) (result *models.VerifyResult, err error) {
	start := time.Now()
	defer s.observeLatency(opVerify, start)

	ctx, span := s.tracer.Start(ctx, tracer.SpanVerify,
		tracer.String(tracer.AttrUserHash, privacy.HashUserID(userID)),
		tracer.String(tracer.AttrModality, modality.String()),
	)
	defer func() { span.End(err) }()

	if err := validateRequest(userID, modality); err != nil {
		return nil, s.handleError(ctx, opVerify, err)
	}

	var (
		ext      extractor.Extraction
		extErr   error
		enrolled mo.Option[models.BiometricTemplate]
		fetchErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ext, extErr = s.extractor.Extract(gctx, modality, image)
		return nil
	})
	g.Go(func() error {
		enrolled, fetchErr = s.store.Fetch(gctx, userID, modality)
		if fetchErr != nil || enrolled.IsAbsent() {
			return errStopExtraction
		}
		return nil
	})
	_ = g.Wait()

	if errors.Is(extErr, models.ErrCapabilityUnavailable) {
		return nil, s.handleError(ctx, opVerify, extErr, "modality", modality)
	}
	if fetchErr != nil {
		return nil, s.handleError(ctx, opVerify, fetchErr, "modality", modality)
	}
	tmpl, ok := enrolled.Get()
	if !ok {
		return nil, s.handleError(ctx, opVerify, errNotEnrolled, "modality", modality)
	}
	if extErr != nil {
		return nil, s.handleError(ctx, opVerify, extErr, "modality", modality)
	}

	plaintext, err := s.cipher.Decrypt(tmpl.Ciphertext)
	if err != nil {
		return nil, s.handleError(ctx, opVerify, err, "modality", modality, "template_id", tmpl.ID.String())
	}
	stored, err := codec.Decode(plaintext, modality)
	if err != nil {
		return nil, s.handleError(ctx, opVerify, err, "modality", modality, "template_id", tmpl.ID.String())
	}

	score := matcher.Compare(modality, codec.Encode(ext.Features), stored)
	verified := matcher.Verified(modality, score)
	confidence := roundTo(score, 3)
	q := store.RoundQuality(quality.Assess(modality, ext.Raster))

	span.SetAttributes(
		tracer.Float64(tracer.AttrScore, confidence),
		tracer.Bool(tracer.AttrVerified, verified),
	)
	if s.metrics != nil {
		s.metrics.IncrementVerifications(modality.Label(), verified)
		s.metrics.ObserveMatchScore(modality.Label(), score)
	}

	if verified {
		now := requestcontext.Now(ctx)
		if err := s.store.TouchLastUsed(ctx, tmpl.ID, now); err != nil {
			s.logger.WarnContext(ctx, "failed to record template use",
				"template_id", tmpl.ID.String(),
				"error", err,
			)
		}
	}

	decision := audit.DecisionRejected
	if verified {
		decision = audit.DecisionAccepted
	}
	s.emitAudit(ctx, audit.Event{
		Action:     audit.ActionVerificationAttempted,
		UserID:     userID,
		Modality:   modality.String(),
		TemplateID: tmpl.ID.String(),
		Quality:    ptr(q),
		Score:      ptr(confidence),
		Decision:   decision,
		Details:    map[string]any{"threshold": matcher.Threshold(modality)},
	})

	s.logger.InfoContext(ctx, "biometric verification completed",
		"modality", modality,
		"template_id", tmpl.ID.String(),
		"verified", verified,
		"confidence", confidence,
		"quality", q,
		"request_id", requestcontext.RequestID(ctx),
	)

	return &models.VerifyResult{Verified: verified, Confidence: confidence, Quality: q}, nil
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow10(digits)
	return math.Round(v*p) / p
}
