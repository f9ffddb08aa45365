package di

import (
	"context"
	"fmt"
	"time"

	drepo "FraudGuard/internal/domain/repository"
	"FraudGuard/internal/handler/api"
	mid "FraudGuard/internal/middleware"
	internalrepo "FraudGuard/internal/repository"
	"FraudGuard/internal/service/behavior"
	"FraudGuard/internal/service/ratelimit"
	"FraudGuard/internal/service/signature"
	"FraudGuard/internal/service/stream"
	"FraudGuard/internal/services/scorer"
	"FraudGuard/internal/usecase"
	"FraudGuard/pkg/cache"
	pkgch "FraudGuard/pkg/clickhouse"
	"FraudGuard/pkg/config"
	pkgkafka "FraudGuard/pkg/kafka"
	"FraudGuard/pkg/logger"
	"FraudGuard/pkg/metrics"
	"FraudGuard/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideScorer creates the HTTP client for the scoring sidecar.
func ProvideScorer(cfg *config.Config) drepo.Scorer {
	return scorer.NewHTTPScorer(cfg)
}

// ProvideRuleEvaluator builds the signature rule set.
func ProvideRuleEvaluator(cfg *config.Config) usecase.RuleEvaluator {
	return signature.NewEvaluator(cfg)
}

// ProvideProfileStore creates the sharded behavioral profile store.
func ProvideProfileStore(cfg *config.Config) drepo.ProfileStore {
	return behavior.NewStore(cfg)
}

// ProvideClickHouseClient creates a ClickHouse client when persistence
// is enabled, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append(
		[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.SchemaStatements(cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)...,
	)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideAssessmentStore creates the assessment history store, wrapped
// in a Redis read-through cache when one is configured. Returns nil
// when persistence is disabled.
func ProvideAssessmentStore(chClient *pkgch.Client, cfg *config.Config, log *logger.Logger) (drepo.AssessmentStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseAssessmentStore(
		chClient.DB(), cfg.ClickHouse.Database+"."+cfg.ClickHouse.Table)
	if !cfg.Redis.Enabled {
		return store, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithAddr(cfg.Redis.Addr),
		cache.WithAuth(cfg.Redis.Password, cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return internalrepo.NewCachedAssessmentStore(store, rc, cfg.Redis.CacheTTL, log), nil
}

// ProvideKafkaProducer creates a Kafka producer, nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertPublisher creates the alert topic publisher.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.AlertPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertTopic)
}

// ProvideBroadcaster creates the websocket alert broadcaster.
func ProvideBroadcaster(log *logger.Logger) *stream.AlertBroadcaster {
	return stream.NewAlertBroadcaster(log)
}

// ProvideAlertSink exposes the broadcaster as the detector's sink.
func ProvideAlertSink(b *stream.AlertBroadcaster) drepo.AlertSink {
	return b
}

// ProvideDetector wires the evaluation stages together.
func ProvideDetector(
	cfg *config.Config,
	sc drepo.Scorer,
	rules usecase.RuleEvaluator,
	profiles drepo.ProfileStore,
	store drepo.AssessmentStore,
	alerts drepo.AlertPublisher,
	sink drepo.AlertSink,
	m drepo.Metrics,
	log *logger.Logger,
) *usecase.Detector {
	return usecase.NewDetector(cfg, sc, rules, profiles, store, alerts, sink, m, log)
}

// ProvideHistoryReader creates the assessment history reader.
func ProvideHistoryReader(store drepo.AssessmentStore) *usecase.HistoryReader {
	return usecase.NewHistoryReader(store)
}

// ProvideRateLimiter creates the per-user detect rate limiter.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Alerts.RateLimitRPS, int(cfg.Alerts.RateLimitBurst))
}

// ProvideHandler creates the HTTP handler.
func ProvideHandler(
	log *logger.Logger,
	detector *usecase.Detector,
	history *usecase.HistoryReader,
	limiter *ratelimit.Limiter,
	broadcaster *stream.AlertBroadcaster,
) *api.DetectEchoHandler {
	return api.NewDetectEchoHandler(log, detector, history, limiter, broadcaster)
}

// ProvideKafkaConsumer creates the intake consumer, nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || !cfg.Kafka.Intake.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Intake.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Intake.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Intake.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Intake.RetryMax, cfg.Kafka.Intake.BackoffMin, cfg.Kafka.Intake.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Intake.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Intake.MinBytes, cfg.Kafka.Intake.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideIntakeHandler creates the intake message handler with its
// pipeline in front of the detector.
func ProvideIntakeHandler(
	detector *usecase.Detector,
	m drepo.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.TransactionIntakeHandler {
	pipe := mid.NewIntakePipeline(usecase.NewDetectorProc(detector), m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(cfg.Kafka.Intake.BufferSize),
	)
	return usecase.NewTransactionIntakeHandler(cfg.Kafka.Intake.Topic, pipe, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler *api.DetectEchoHandler,
	consumer *pkgkafka.Consumer,
	ih *usecase.TransactionIntakeHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	broadcaster *stream.AlertBroadcaster,
	store drepo.AssessmentStore,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, log, handler, consumer, ih, chClient, producer, broadcaster, store)
}
