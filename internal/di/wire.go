//go:build wireinject
// +build wireinject

package di

import (
	"FraudGuard/pkg/config"
	"FraudGuard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Engine stages
		ProvideScorer,
		ProvideRuleEvaluator,
		ProvideProfileStore,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideAssessmentStore,
		ProvideAlertPublisher,
		ProvideBroadcaster,
		ProvideAlertSink,

		// Use cases
		ProvideDetector,
		ProvideHistoryReader,
		ProvideRateLimiter,
		ProvideIntakeHandler,

		// Transport
		ProvideHandler,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
