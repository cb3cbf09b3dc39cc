package validate

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/cluster"
	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/features"
	"github.com/listenupapp/bookclusters/internal/recommend"
)

// EngineFactory returns a fresh, unfitted cluster engine.
type EngineFactory func() cluster.Engine

// Score aggregates per-fold results.
type Score struct {
	Mean  float64
	Std   float64   // population standard deviation
	Folds []float64 // per-fold values, in fold order
}

func newScore(folds []float64) Score {
	mean, std := stat.PopMeanStdDev(folds, nil)
	return Score{Mean: mean, Std: std, Folds: folds}
}

// Config controls cross-validation.
type Config struct {
	Folds           int   // default: 5
	Seed            int64 // fold shuffling seed (default: 42)
	Recommendations int   // recommendations scored per fold (default: 5)
	Parallelism     int   // concurrent folds (default: GOMAXPROCS)
}

// Validator runs the cross-validations.
type Validator struct {
	cfg         Config
	newEngine   EngineFactory
	recommender *recommend.Recommender
	logger      *slog.Logger
}

// New creates a Validator.
func New(cfg Config, newEngine EngineFactory, recommender *recommend.Recommender, logger *slog.Logger) *Validator {
	if cfg.Folds == 0 {
		cfg.Folds = 5
	}
	if cfg.Recommendations <= 0 {
		cfg.Recommendations = 5
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Validator{cfg: cfg, newEngine: newEngine, recommender: recommender, logger: logger}
}

// CrossValidateClustering fits an engine on each training fold, predicts
// labels for the held-out rows with that fitted model, and scores the
// held-out rows with the silhouette coefficient.
func (v *Validator) CrossValidateClustering(ctx context.Context, m *features.Matrix) (Score, error) {
	splits, err := KFold(m.Len(), v.cfg.Folds, v.cfg.Seed)
	if err != nil {
		return Score{}, err
	}

	scores, err := v.eachFold(ctx, splits, func(fold int, s Split) (float64, error) {
		engine := v.newEngine()
		if err := engine.Fit(m.Subset(s.Train)); err != nil {
			return 0, errors.Wrapf(err, errors.CodeOf(err), "fold %d: fit", fold)
		}

		test := m.Subset(s.Test)
		labels, err := engine.Predict(test)
		if err != nil {
			return 0, errors.Wrapf(err, errors.CodeOf(err), "fold %d: predict", fold)
		}
		return Silhouette(test.Rows, labels), nil
	})
	if err != nil {
		return Score{}, err
	}
	return newScore(scores), nil
}

// CrossValidateRecommendation treats the first held-out record of each fold
// as a user whose preferences are its own genre and fiction flag, recommends
// from the training rows, and scores 1 when any recommended record shares the
// user's genre, else 0.
func (v *Validator) CrossValidateRecommendation(ctx context.Context, t *catalog.Table, m *features.Matrix) (Score, error) {
	if t.Len() != m.Len() {
		return Score{}, errors.Validationf("table has %d records but feature matrix has %d rows", t.Len(), m.Len())
	}
	splits, err := KFold(m.Len(), v.cfg.Folds, v.cfg.Seed)
	if err != nil {
		return Score{}, err
	}

	scores, err := v.eachFold(ctx, splits, func(_ int, s Split) (float64, error) {
		user := t.Records[m.Index[s.Test[0]]]
		genre := user.Text(catalog.FieldGenre)
		prefs := recommend.Preferences{
			catalog.FieldGenre:     genre,
			catalog.FieldIsFiction: user[catalog.FieldIsFiction],
		}

		train := m.Subset(s.Train)
		profile := v.recommender.BuildProfile(prefs, train.Columns)
		for _, id := range v.recommender.Recommend(profile, train, v.cfg.Recommendations) {
			if t.Records[id].Text(catalog.FieldGenre) == genre {
				return 1, nil
			}
		}
		return 0, nil
	})
	if err != nil {
		return Score{}, err
	}
	return newScore(scores), nil
}

// eachFold runs score on every split concurrently. Results are stored by
// fold index, so the aggregate does not depend on completion order.
func (v *Validator) eachFold(ctx context.Context, splits []Split, score func(int, Split) (float64, error)) ([]float64, error) {
	results := make([]float64, len(splits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Parallelism)

	for fold, s := range splits {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			value, err := score(fold, s)
			if err != nil {
				return err
			}
			results[fold] = value
			v.logger.Debug("fold scored", "fold", fold, "train", len(s.Train), "test", len(s.Test), "score", value)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
