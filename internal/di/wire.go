//go:build wireinject
// +build wireinject

package di

import (
	"FitPull/pkg/config"
	"FitPull/pkg/server"

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
		ProvideClickHouseClient,
		ProvideRedisClient,
		ProvideQueue,
		ProvidePublisher,

		// Repositories
		ProvidePriceSource,
		ProvideMetricsStore,
		ProvideJobStore,

		// Services
		ProvideModelFitter,

		// Use cases
		ProvideSymbolTrainer,
		ProvideBatchTrainer,
		ProvideTrainBatchJob,

		// HTTP
		ProvideTrainingHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
