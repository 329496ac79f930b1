// Package service orchestrates biometric enrollment and verification.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Extractor,TemplateCipher,AuditPublisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/mo"

	"biogate/internal/audit"
	"biogate/internal/biometric/extractor"
	"biogate/internal/biometric/metrics"
	"biogate/internal/biometric/models"
	"biogate/internal/platform/tracer"
	platformsync "biogate/pkg/platform/sync"
)

// Store persists encrypted templates.
// Error Contract:
// - Fetch returns mo.None when no active template exists
// - TouchLastUsed returns sentinel.ErrNotFound for an unknown id
// - infrastructure failures wrap sentinel.ErrUnavailable
type Store interface {
	Upsert(ctx context.Context, userID string, modality models.Modality, ciphertext string, quality float64) (models.TemplateID, error)
	Fetch(ctx context.Context, userID string, modality models.Modality) (mo.Option[models.BiometricTemplate], error)
	Deactivate(ctx context.Context, userID string, modality models.Modality) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]models.BiometricTemplate, error)
	TouchLastUsed(ctx context.Context, id models.TemplateID, at time.Time) error
}

// Extractor turns sample bytes into features plus the raster quality is
// assessed on.
type Extractor interface {
	Extract(ctx context.Context, modality models.Modality, image []byte) (extractor.Extraction, error)
}

// TemplateCipher seals serialized templates.
type TemplateCipher interface {
	Encrypt(plaintext []byte) (string, error)
	Decrypt(ciphertext string) ([]byte, error)
}

// AuditPublisher records biometric audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Option func(*Service)

// Service runs the enrollment and verification pipelines. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	store     Store
	extractor Extractor
	cipher    TemplateCipher
	auditor   AuditPublisher
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	logger    *slog.Logger

	// enrollLocks serializes the fetch-then-upsert of concurrent enrollments
	// for the same user and modality.
	enrollLocks platformsync.ShardedMutex
}

func New(store Store, ext Extractor, cipher TemplateCipher, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:     store,
		extractor: ext,
		cipher:    cipher,
		logger:    logger,
		tracer:    tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// WithAuditPublisher sets where audit events are emitted.
func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = p
	}
}

// WithMetrics sets the metrics instance for the service
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}
