package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"biogate/internal/audit"
	"biogate/internal/biometric/service"
	"biogate/internal/biometric/store"
	"biogate/internal/platform/config"
	"biogate/internal/platform/database"
	"biogate/internal/platform/health"
	"biogate/internal/platform/kafka/producer"
	"biogate/internal/platform/redis"
	"biogate/migrations"
	"biogate/pkg/platform/circuit"
)

const kafkaCooldown = 30 * time.Second

// infra holds the external resources the service runs on and the order in
// which they are released.
type infra struct {
	templates      service.Store
	auditPublisher *audit.Publisher
	checks         map[string]health.CheckFunc

	closers []func()
}

func (i *infra) onClose(fn func()) {
	i.closers = append(i.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (i *infra) Close() {
	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		i.closers[idx]()
	}
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *infra, err error) {
	in := &infra{checks: make(map[string]health.CheckFunc)}
	defer func() {
		if err != nil {
			in.Close()
		}
	}()

	var sinks audit.Fanout

	switch cfg.Biometric.StoreBackend {
	case config.BackendPostgres:
		pool, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		in.onClose(func() {
			if err := pool.Close(); err != nil {
				log.Error("failed to close database pool", "error", err)
			}
		})
		if cfg.Database.AutoMigrate {
			applied, err := database.Migrate(ctx, pool.DB(), migrations.FS)
			if err != nil {
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
			log.Info("database migrations applied", "versions", applied)
		}
		if err := pool.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			log.Warn("database pool metrics not registered", "error", err)
		}
		in.templates = store.NewPostgres(pool.DB())
		in.checks["postgres"] = pool.Health
		sinks = append(sinks, audit.NewPostgresStore(pool.DB()))
		log.Info("template store ready", "backend", "postgres", "max_open_conns", cfg.Database.MaxOpenConns)

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if err := client.RegisterMetrics(prometheus.DefaultRegisterer); err != nil {
			log.Warn("redis pool metrics not registered", "error", err)
		}
		in.onClose(func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", "error", err)
			}
		})
		in.templates = store.NewRedis(client.Client)
		in.checks["redis"] = client.Health
		log.Info("template store ready", "backend", "redis")

	case config.BackendMemory:
		in.templates = store.NewInMemory()
		log.Info("template store ready", "backend", "memory")

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Biometric.StoreBackend)
	}

	if cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			return nil, fmt.Errorf("connect kafka: %w", err)
		}
		in.onClose(func() {
			if err := p.Close(); err != nil {
				log.Error("failed to close kafka producer", "error", err)
			}
		})
		in.checks["kafka"] = p.Health
		breaker := circuit.New("kafka-audit", circuit.WithCooldown(kafkaCooldown))
		sinks = append(sinks, audit.NewFallbackSink(
			audit.NewKafkaSink(p, cfg.Kafka.AuditTopic), audit.NewLogSink(log), breaker, log,
		))
		log.Info("audit events published to kafka", "topic", cfg.Kafka.AuditTopic)
	}

	if len(sinks) == 0 {
		sinks = append(sinks, audit.NewInMemoryStore())
	}

	publisher := audit.NewPublisher(sinks,
		audit.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
		audit.WithPublisherLogger(log),
	)
	// Registered last so it drains before the sinks above are closed.
	in.onClose(publisher.Close)
	in.auditPublisher = publisher

	return in, nil
}
