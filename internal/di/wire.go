//go:build wireinject
// +build wireinject

package di

import (
	"FinMerge/pkg/config"
	"FinMerge/pkg/server"

	"github.com/google/wire"
)

var baseSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideRunID,
	ProvideCSVStore,
)

var sinkSet = wire.NewSet(
	ProvideStorage,
	ProvidePublisher,
	ProvideSinks,
)

// InitializeStockFetch wires the price download command.
func InitializeStockFetch(cfg *config.Config) (*server.App, error) {
	wire.Build(
		baseSet,
		ProvideMetricsServer,
		ProvideTickerSource,
		ProvidePriceSource,
		ProvideStockFetch,
		ProvideStockFetchApp,
	)
	return &server.App{}, nil
}

// InitializeMacroMerge wires the indicator fetch and as-of merge command.
func InitializeMacroMerge(cfg *config.Config) (*server.App, error) {
	wire.Build(
		baseSet,
		sinkSet,
		ProvideMetricsServer,
		ProvideResponseCache,
		ProvideAPIClient,
		ProvideIndicatorSources,
		ProvideAligner,
		ProvideMacroMerge,
		ProvideMacroMergeApp,
	)
	return &server.App{}, nil
}

// InitializeNewsScrape wires the headline scraping command.
func InitializeNewsScrape(cfg *config.Config) (*server.App, error) {
	wire.Build(
		baseSet,
		sinkSet,
		ProvideMetricsServer,
		ProvideTickerSource,
		ProvideThrottle,
		ProvideFetcher,
		ProvideExtractor,
		ProvideNewsSources,
		ProvideNewsOptions,
		ProvideNewsScrape,
		ProvideNewsScrapeApp,
	)
	return &server.App{}, nil
}

// InitializeSentiment wires the scoring and daily aggregation command.
func InitializeSentiment(cfg *config.Config) (*server.App, error) {
	wire.Build(
		baseSet,
		sinkSet,
		ProvideMetricsServer,
		ProvideSentimentModel,
		ProvideSentimentOptions,
		ProvideSentimentScore,
		ProvideSentimentApp,
	)
	return &server.App{}, nil
}

// InitializeServer wires the read-only results API.
func InitializeServer(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideRegistry,
		ProvideCSVStore,
		ProvideStorage,
		ProvideResultsHandler,
		ProvideAPIServer,
		ProvideServerApp,
	)
	return &server.App{}, nil
}
