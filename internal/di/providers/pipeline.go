package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/cluster"
	"github.com/listenupapp/bookclusters/internal/config"
	"github.com/listenupapp/bookclusters/internal/features"
	"github.com/listenupapp/bookclusters/internal/logger"
	"github.com/listenupapp/bookclusters/internal/pipeline"
	"github.com/listenupapp/bookclusters/internal/profile"
	"github.com/listenupapp/bookclusters/internal/recommend"
	"github.com/listenupapp/bookclusters/internal/report"
	"github.com/listenupapp/bookclusters/internal/validate"
)

// ProvideLoader provides the catalog loader.
func ProvideLoader(i do.Injector) (*catalog.Loader, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return catalog.NewLoader(log.Logger), nil
}

// ProvideBuilder provides the feature builder.
func ProvideBuilder(i do.Injector) (*features.Builder, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return features.NewBuilder(features.Options{
		MaxFeatures: cfg.Features.MaxFeatures,
		Components:  cfg.Features.Components,
	}, log.Logger)
}

// ProvideEngineFactory provides a constructor for unfitted k-means models.
// Cross-validation needs one fresh model per fold.
func ProvideEngineFactory(i do.Injector) (validate.EngineFactory, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	clusterCfg := cluster.Config{
		K:             cfg.Cluster.Count,
		MaxIterations: cfg.Cluster.MaxIterations,
		Tolerance:     cfg.Cluster.Tolerance,
		InitRuns:      cfg.Cluster.InitRuns,
		Seed:          cfg.Cluster.Seed,
	}
	return func() cluster.Engine {
		return cluster.New(clusterCfg, log.Logger)
	}, nil
}

// ProvideProfiler provides the cluster profiler.
func ProvideProfiler(i do.Injector) (*profile.Profiler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return profile.NewProfiler(cfg.Report.ProfileTopGenres, log.Logger), nil
}

// ProvideRecommender provides the recommender.
func ProvideRecommender(i do.Injector) (*recommend.Recommender, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return recommend.New(log.Logger), nil
}

// ProvideValidator provides the cross-validation harness.
func ProvideValidator(i do.Injector) (*validate.Validator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return validate.New(validate.Config{
		Folds:           cfg.Validation.Folds,
		Seed:            cfg.Cluster.Seed,
		Recommendations: cfg.Recommend.Count,
	},
		do.MustInvoke[validate.EngineFactory](i),
		do.MustInvoke[*recommend.Recommender](i),
		log.Logger,
	), nil
}

// ProvideConsole provides the console report sink on stdout.
func ProvideConsole(_ do.Injector) (*report.Console, error) {
	return report.NewConsole(os.Stdout), nil
}

// ProvideCharts provides the text chart sink on stdout.
func ProvideCharts(_ do.Injector) (*report.Charts, error) {
	return report.NewCharts(os.Stdout), nil
}

// ProvideRunner provides the pipeline runner.
func ProvideRunner(i do.Injector) (*pipeline.Runner, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return pipeline.New(pipeline.Deps{
		Loader:      do.MustInvoke[*catalog.Loader](i),
		Builder:     do.MustInvoke[*features.Builder](i),
		NewEngine:   do.MustInvoke[validate.EngineFactory](i),
		Validator:   do.MustInvoke[*validate.Validator](i),
		Profiler:    do.MustInvoke[*profile.Profiler](i),
		Recommender: do.MustInvoke[*recommend.Recommender](i),
		Console:     do.MustInvoke[*report.Console](i),
		Charts:      do.MustInvoke[*report.Charts](i),
		Logger:      do.MustInvoke[*logger.Logger](i),
	}, pipeline.Options{
		InputPath:       cfg.Catalog.Path,
		Recommendations: cfg.Recommend.Count,
		ChartTopGenres:  cfg.Report.ChartTopGenres,
	}), nil
}
