package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"biogate/internal/biometric/cipher"
	"biogate/internal/biometric/extractor"
	biohandler "biogate/internal/biometric/handler"
	biometrics "biogate/internal/biometric/metrics"
	"biogate/internal/biometric/models"
	"biogate/internal/biometric/service"
	jwttoken "biogate/internal/jwt_token"
	"biogate/internal/platform/config"
	"biogate/internal/platform/health"
	"biogate/internal/platform/logger"
	"biogate/internal/platform/tracer"
	"biogate/pkg/platform/middleware/auth"
	"biogate/pkg/platform/middleware/request"
)

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in internal/biometric.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, logCloser, err := logger.FromConfig(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close() //nolint:errcheck // nothing to do on shutdown

	if cfg.IsDev() {
		log.Warn("running with development defaults; do not use in production",
			"environment", cfg.Server.Environment,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := buildInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	capability := extractor.LoadCapability(extractor.Config{
		ImagingDisabled: cfg.Biometric.ImagingDisabled,
		FaceCascadePath: cfg.Biometric.FaceCascadePath,
	}, log)
	defer capability.Close() //nolint:errcheck // detector release is best-effort

	available := lo.Map(capability.Available(), func(m models.Modality, _ int) string { return m.String() })
	log.Info("biometric capability loaded", "modalities", available)

	templateCipher, err := cipher.New(cfg.Biometric.EncryptionKey)
	if err != nil {
		return fmt.Errorf("init template cipher: %w", err)
	}

	svc := service.New(infra.templates, extractor.New(capability), templateCipher, log,
		service.WithAuditPublisher(infra.auditPublisher),
		service.WithMetrics(biometrics.New()),
		service.WithTracer(tracer.NewOTel()),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	jwtService.SetEnv(cfg.Server.Environment)

	healthHandler := health.New(cfg.Server.Environment)
	healthHandler.SetCapabilities(available)
	for name, check := range infra.checks {
		healthHandler.RegisterCheck(name, check)
	}

	router := newRouter(cfg, log, routes{
		biometric: biohandler.New(svc, log),
		health:    healthHandler,
		validator: jwttoken.NewJWTServiceAdapter(jwtService),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.RequestTimeout,
		WriteTimeout:      cfg.Server.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting http server",
			"addr", cfg.Server.Addr,
			"environment", cfg.Server.Environment,
			"store_backend", cfg.Biometric.StoreBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

type routes struct {
	biometric *biohandler.Handler
	health    *health.Handler
	validator auth.JWTValidator
}

func newRouter(cfg config.Config, log *slog.Logger, h routes) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(request.NewMetrics()))

	h.health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.BodyLimit(cfg.Server.MaxUploadBytes))
		r.Use(request.Timeout(cfg.Server.RequestTimeout))
		r.Use(request.ContentTypeMultipart)
		r.Use(auth.RequireAuth(h.validator, log))
		h.biometric.Register(r)
	})

	return r
}
