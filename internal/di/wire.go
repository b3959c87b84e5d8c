//go:build wireinject
// +build wireinject

package di

import (
	"MillionaireMaker/pkg/config"
	"MillionaireMaker/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvidePostgresClient,
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideModelClient,

		// Repositories
		ProvideDrawRepository,
		ProvideCacheService,
		ProvideProfileCache,
		ProvideReportStore,
		ProvidePublisher,

		// Use cases
		ProvideEngineConfig,
		ProvideProfileLoader,
		ProvideEngine,
		ProvideKafkaDrawsHandler,
		ProvideQueue,
		ProvideJobs,

		// HTTP
		ProvideRateLimiter,
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
