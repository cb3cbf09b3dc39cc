// Package pipeline runs the book clustering stages in order, guarding each
// one so a failure only cancels the stages that depend on it.
package pipeline

import (
	"context"
	"time"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/features"
	"github.com/listenupapp/bookclusters/internal/id"
	"github.com/listenupapp/bookclusters/internal/logger"
	"github.com/listenupapp/bookclusters/internal/profile"
	"github.com/listenupapp/bookclusters/internal/recommend"
	"github.com/listenupapp/bookclusters/internal/report"
	"github.com/listenupapp/bookclusters/internal/validate"
)

// unknownRunID tags a run whose id could not be generated.
const unknownRunID = "run-unknown"

// Options controls a run.
type Options struct {
	InputPath       string
	Recommendations int                   // default: 5
	ChartTopGenres  int                   // default: 10
	Preferences     recommend.Preferences // default: recommend.DefaultPreferences()
}

// Deps are the components a Runner drives.
type Deps struct {
	Loader      *catalog.Loader
	Builder     *features.Builder
	NewEngine   validate.EngineFactory
	Validator   *validate.Validator
	Profiler    *profile.Profiler
	Recommender *recommend.Recommender
	Console     *report.Console
	Charts      *report.Charts
	Logger      *logger.Logger
}

// Result holds everything a run produced. Fields of stages that did not
// succeed are left zero.
type Result struct {
	RunID string

	Table               *catalog.Table
	Features            *features.Matrix
	FeatureReport       *features.Report
	ClusteringScore     validate.Score
	RecommendationScore validate.Score
	Labels              []int
	Profiles            map[int]profile.Profile
	Recommendations     []int // table rows, most similar first

	Completed []Stage
	Failed    []*StageError
	Skipped   []Stage // stages not run because a dependency failed
}

// OK reports whether every stage succeeded.
func (r *Result) OK() bool {
	return len(r.Failed) == 0 && len(r.Skipped) == 0
}

// Err returns the first stage failure, or nil.
func (r *Result) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return r.Failed[0]
}

// ExitCode is 0 for a clean run, else the code of the first failure.
func (r *Result) ExitCode() int {
	if len(r.Failed) == 0 {
		return 0
	}
	return r.Failed[0].ExitCode()
}

func (r *Result) succeeded(stage Stage) bool {
	for _, s := range r.Completed {
		if s == stage {
			return true
		}
	}
	return false
}

// Runner executes the pipeline.
type Runner struct {
	deps Deps
	opts Options
}

// New creates a Runner.
func New(deps Deps, opts Options) *Runner {
	if opts.Recommendations <= 0 {
		opts.Recommendations = 5
	}
	if opts.ChartTopGenres <= 0 {
		opts.ChartTopGenres = 10
	}
	if opts.Preferences == nil {
		opts.Preferences = recommend.DefaultPreferences()
	}
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &Runner{deps: deps, opts: opts}
}

// Run executes every stage whose dependencies succeeded. It never returns
// a partial result as success: check Result.Err or Result.ExitCode.
func (r *Runner) Run(ctx context.Context) *Result {
	runID, err := id.NewRunID()
	if err != nil {
		r.deps.Logger.WithError(err).Warn("run id unavailable")
		runID = unknownRunID
	}
	res := &Result{RunID: runID}
	log := r.deps.Logger.WithField("run_id", res.RunID)
	log.Info("pipeline started", "input", r.opts.InputPath)

	stages := []struct {
		name Stage
		run  func(context.Context, *logger.Logger, *Result) error
	}{
		{StageLoad, r.load},
		{StageEngineer, r.engineer},
		{StageCluster, r.cluster},
		{StageProfile, r.profile},
		{StageVisualize, r.visualize},
		{StageRecommend, r.recommend},
	}

	start := time.Now()
	for _, s := range stages {
		stageLog := log.WithStage(string(s.name))

		if missing := r.missingDependency(res, s.name); missing != "" {
			stageLog.Warn("stage skipped", "waiting_on", string(missing))
			res.Skipped = append(res.Skipped, s.name)
			continue
		}
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, &StageError{Stage: s.name, Err: errors.Wrap(err, errors.CodeInternal, "run cancelled")})
			continue
		}

		stageStart := time.Now()
		if err := s.run(ctx, stageLog, res); err != nil {
			stageLog.WithError(err).Error("stage failed")
			res.Failed = append(res.Failed, &StageError{Stage: s.name, Err: err})
			continue
		}
		res.Completed = append(res.Completed, s.name)
		stageLog.Timed(stageStart, "stage completed")
	}

	log.Timed(start, "pipeline finished",
		"completed", len(res.Completed),
		"failed", len(res.Failed),
		"skipped", len(res.Skipped),
	)
	return res
}

func (r *Runner) missingDependency(res *Result, stage Stage) Stage {
	for _, dep := range dependencies[stage] {
		if !res.succeeded(dep) {
			return dep
		}
	}
	return ""
}

func (r *Runner) load(_ context.Context, log *logger.Logger, res *Result) error {
	t, err := r.deps.Loader.LoadAndPreprocess(r.opts.InputPath)
	if err != nil {
		return err
	}
	if t == nil || t.Len() == 0 {
		return errors.InsufficientDataf("catalog %s has no records", r.opts.InputPath)
	}
	res.Table = t
	log.Info("catalog loaded", "records", t.Len(), "columns", len(t.Columns))
	r.deps.Console.Loaded(t)
	return r.deps.Console.Err()
}

func (r *Runner) engineer(_ context.Context, log *logger.Logger, res *Result) error {
	m, rep, err := r.deps.Builder.Engineer(res.Table)
	if err != nil {
		return err
	}
	res.Features, res.FeatureReport = m, rep
	log.Info("features engineered",
		"rows", m.Len(),
		"components", rep.Components,
		"input_columns", rep.InputColumns,
	)
	r.deps.Console.Engineered(m)
	return r.deps.Console.Err()
}

func (r *Runner) cluster(ctx context.Context, log *logger.Logger, res *Result) error {
	score, err := r.deps.Validator.CrossValidateClustering(ctx, res.Features)
	if err != nil {
		return err
	}
	res.ClusteringScore = score
	r.deps.Console.ClusteringScore(score)

	score, err = r.deps.Validator.CrossValidateRecommendation(ctx, res.Table, res.Features)
	if err != nil {
		return err
	}
	res.RecommendationScore = score
	r.deps.Console.RecommendationScore(score)

	labels, err := r.deps.NewEngine().FitPredict(res.Features)
	if err != nil {
		return err
	}
	res.Labels = labels
	log.Info("books clustered",
		"silhouette", res.ClusteringScore.Mean,
		"precision", res.RecommendationScore.Mean,
	)
	r.deps.Console.Clustered(labels)
	return r.deps.Console.Err()
}

func (r *Runner) profile(_ context.Context, log *logger.Logger, res *Result) error {
	profiles, err := r.deps.Profiler.Profile(res.Table, res.Labels)
	if err != nil {
		return err
	}
	res.Profiles = profiles
	log.Info("clusters profiled", "profiles", len(profiles))
	r.deps.Console.Profiles(profiles)
	return r.deps.Console.Err()
}

func (r *Runner) visualize(_ context.Context, log *logger.Logger, res *Result) error {
	charts := r.deps.Charts
	charts.ClusterSizes(res.Profiles)
	charts.GenreDistribution(profile.GenreDistribution(res.Table, r.opts.ChartTopGenres))

	lexile, err := profile.LexileByCluster(res.Table, res.Labels)
	if err != nil {
		return err
	}
	if len(lexile) == 0 {
		log.Warn("no valid lexile levels, skipping lexile chart")
	}
	charts.LexileByCluster(lexile)

	fiction, err := profile.FictionRatioByCluster(res.Table, res.Labels)
	if err != nil {
		return err
	}
	charts.FictionRatio(fiction)
	return charts.Err()
}

func (r *Runner) recommend(_ context.Context, log *logger.Logger, res *Result) error {
	vec := r.deps.Recommender.BuildProfile(r.opts.Preferences, res.Features.Columns)
	res.Recommendations = r.deps.Recommender.Recommend(vec, res.Features, r.opts.Recommendations)
	log.Info("recommendations ready", "count", len(res.Recommendations))
	r.deps.Console.Recommendations(res.Table, res.Recommendations)
	return r.deps.Console.Err()
}
