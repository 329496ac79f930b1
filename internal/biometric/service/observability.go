package service

import (
	"context"
	"time"

	"biogate/internal/audit"
	"biogate/pkg/requestcontext"
)

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) observeLatency(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveLatency(op, time.Since(start).Seconds())
	}
}

func ptr[T any](v T) *T { return &v }
