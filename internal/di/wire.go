//go:build wireinject
// +build wireinject

package di

import (
	"PortfolioSim/pkg/config"
	"PortfolioSim/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisClient,
		ProvideKafkaProducer,
		ProvideErrorDigest,

		// Repositories
		ProvideBytesCache,
		ProvideJobStore,
		ProvideEventPublisher,

		// Use cases
		ProvideSimulationRunner,
		ProvideExecutor,
		ProvideJobTracker,
		ProvideQueue,
		ProvideDispatcher,
		ProvideJobService,

		// HTTP
		ProvideRateLimiter,
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
