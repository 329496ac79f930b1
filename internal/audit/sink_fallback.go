package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"biogate/internal/platform/privacy"
	"biogate/pkg/platform/circuit"
)

// FallbackSink guards a remote primary sink with a circuit breaker. Events
// the primary rejects, or that arrive while the breaker is open, go to the
// fallback instead.
type FallbackSink struct {
	primary  Sink
	fallback Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
	now      func() time.Time
}

func NewFallbackSink(primary, fallback Sink, breaker *circuit.Breaker, logger *slog.Logger) *FallbackSink {
	return &FallbackSink{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *FallbackSink) Append(ctx context.Context, event Event) error {
	var primaryErr error
	if f.breaker.Allow(f.now()) {
		primaryErr = f.primary.Append(ctx, event)
		if primaryErr == nil {
			if f.breaker.RecordSuccess().Closed {
				f.logger.InfoContext(ctx, "audit circuit closed", "sink", f.breaker.Name())
			}
			return nil
		}
		if f.breaker.RecordFailure(f.now()).Opened {
			f.logger.WarnContext(ctx, "audit circuit opened", "sink", f.breaker.Name(), "error", primaryErr)
		}
	}

	if err := f.fallback.Append(ctx, event); err != nil {
		return errors.Join(primaryErr, err)
	}
	return nil
}

// LogSink writes events to a logger. It is the last-resort fallback: log
// shipping keeps the record when the event bus is down.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (l *LogSink) Append(ctx context.Context, event Event) error {
	attrs := []any{
		"audit_id", event.ID,
		"action", event.Action,
		"user_hash", privacy.HashUserID(event.UserID),
		"modality", event.Modality,
		"timestamp", event.Timestamp,
	}
	if event.TemplateID != "" {
		attrs = append(attrs, "template_id", event.TemplateID)
	}
	if event.Score != nil {
		attrs = append(attrs, "score", *event.Score, "decision", event.Decision)
	}
	if event.RequestID != "" {
		attrs = append(attrs, "request_id", event.RequestID)
	}
	l.logger.WarnContext(ctx, "audit event not delivered to primary sink", attrs...)
	return nil
}
