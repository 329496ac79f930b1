package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"biogate/internal/audit"
	"biogate/internal/biometric/models"
	"biogate/internal/platform/privacy"
	"biogate/internal/platform/tracer"
	dErrors "biogate/pkg/domain-errors"
	"biogate/pkg/requestcontext"
)

const (
	opDeactivate = "deactivate"
	opStatus     = "status"
)

// Deactivate disables the user's template for modality. It reports whether a
// template existed; the row itself is kept.
func (s *Service) Deactivate(ctx context.Context, userID string, modality models.Modality) (deactivated bool, err error) {
	start := time.Now()
	defer s.observeLatency(opDeactivate, start)

	ctx, span := s.tracer.Start(ctx, tracer.SpanDeactivate,
		tracer.String(tracer.AttrUserHash, privacy.HashUserID(userID)),
		tracer.String(tracer.AttrModality, modality.String()),
	)
	defer func() { span.End(err) }()

	if err := validateRequest(userID, modality); err != nil {
		return false, s.handleError(ctx, opDeactivate, err)
	}

	deactivated, err = s.store.Deactivate(ctx, userID, modality)
	if err != nil {
		return false, s.handleError(ctx, opDeactivate, err, "modality", modality)
	}
	if !deactivated {
		return false, nil
	}

	if s.metrics != nil {
		s.metrics.IncrementDeactivations(modality.Label())
	}
	s.emitAudit(ctx, audit.Event{
		Action:   audit.ActionTemplateDeactivated,
		UserID:   userID,
		Modality: modality.String(),
	})
	s.logger.InfoContext(ctx, "biometric template deactivated",
		"modality", modality,
		"request_id", requestcontext.RequestID(ctx),
	)
	return true, nil
}

// Status lists every template stored for userID, active or not, without
// payloads.
func (s *Service) Status(ctx context.Context, userID string) (statuses []models.EnrollmentStatus, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanStatus,
		tracer.String(tracer.AttrUserHash, privacy.HashUserID(userID)),
	)
	defer func() { span.End(err) }()

	if userID == "" {
		return nil, s.handleError(ctx, opStatus, dErrors.New(dErrors.CodeInvalidInput, "user_id is required"))
	}
	templates, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.handleError(ctx, opStatus, err)
	}
	return lo.Map(templates, func(t models.BiometricTemplate, _ int) models.EnrollmentStatus {
		return models.StatusFromTemplate(t)
	}), nil
}
