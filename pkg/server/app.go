package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	drepo "FraudGuard/internal/domain/repository"
	"FraudGuard/internal/handler/api"
	internalrepo "FraudGuard/internal/repository"
	"FraudGuard/internal/service/stream"
	"FraudGuard/internal/usecase"
	pkgch "FraudGuard/pkg/clickhouse"
	"FraudGuard/pkg/config"
	xhttp "FraudGuard/pkg/http"
	pkgkafka "FraudGuard/pkg/kafka"
	applogger "FraudGuard/pkg/logger"
)

// logReportTopic receives aggregated error reports from the log
// collector when Kafka is enabled.
const logReportTopic = "fraudguard.log-reports"

// App encapsulates the application lifecycle: HTTP server, optional
// streaming intake, and infrastructure clients.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	handler     *api.DetectEchoHandler
	consumer    *pkgkafka.Consumer
	ih          *usecase.TransactionIntakeHandler
	chClient    *pkgch.Client
	producer    *pkgkafka.Producer
	broadcaster *stream.AlertBroadcaster
	store       drepo.AssessmentStore
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	handler *api.DetectEchoHandler,
	consumer *pkgkafka.Consumer,
	ih *usecase.TransactionIntakeHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	broadcaster *stream.AlertBroadcaster,
	store drepo.AssessmentStore,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		handler:     handler,
		consumer:    consumer,
		ih:          ih,
		chClient:    chClient,
		producer:    producer,
		broadcaster: broadcaster,
		store:       store,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Ship aggregated error reports over Kafka when a producer exists.
	if a.producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          logReportTopic,
			Publisher:      internalrepo.NewProducerLogSink(a.producer),
		})
	}

	serverOpts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if a.cfg.Metrics.Enabled {
		serverOpts = append(serverOpts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, serverOpts...)

	// Start streaming intake if configured.
	if a.consumer != nil && a.ih != nil {
		a.ih.Pipeline().Start(ctx)
		a.consumer.RegisterHandler(a.ih)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("streaming intake started", applogger.String("topic", a.ih.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("detection service listening",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.ih != nil {
		a.ih.Pipeline().Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.broadcaster != nil {
		a.broadcaster.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			l.Warn("assessment store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Collector last so final error batches still reach the producer.
	l.RemoveCollector()
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
