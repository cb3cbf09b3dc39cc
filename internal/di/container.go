// Package di provides dependency injection configuration for the book
// clustering pipeline.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclusters/internal/config"
	"github.com/listenupapp/bookclusters/internal/di/providers"
	"github.com/listenupapp/bookclusters/internal/logger"
	"github.com/listenupapp/bookclusters/internal/pipeline"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments after the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.ProvideValue(injector, providers.Args(args))
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Input and features
	do.Provide(injector, providers.ProvideLoader)
	do.Provide(injector, providers.ProvideBuilder)

	// Models
	do.Provide(injector, providers.ProvideEngineFactory)
	do.Provide(injector, providers.ProvideProfiler)
	do.Provide(injector, providers.ProvideRecommender)
	do.Provide(injector, providers.ProvideValidator)

	// Output
	do.Provide(injector, providers.ProvideConsole)
	do.Provide(injector, providers.ProvideCharts)

	do.Provide(injector, providers.ProvideRunner)

	return injector
}

// Bootstrap resolves the configuration, logger, and runner so that wiring
// errors surface before any stage runs.
func Bootstrap(injector *do.RootScope) (*pipeline.Runner, error) {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return nil, err
	}
	return do.Invoke[*pipeline.Runner](injector)
}
