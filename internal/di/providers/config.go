// Package providers contains dependency injection providers for the book
// clustering pipeline.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclusters/internal/config"
	"github.com/listenupapp/bookclusters/internal/logger"
)

// Args are the command-line arguments after the program name.
type Args []string

// ProvideConfig provides the pipeline configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(do.MustInvoke[Args](i))
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting book clustering",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"catalog_path", cfg.Catalog.Path,
		"clusters", cfg.Cluster.Count,
		"folds", cfg.Validation.Folds,
		"seed", cfg.Cluster.Seed,
	)

	return log, nil
}
