// Package cluster partitions feature rows into k groups with k-means.
package cluster

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/stat"

	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/features"
)

// ErrInsufficientData is returned when there are fewer rows than clusters.
var ErrInsufficientData = errors.ErrInsufficientData

// Engine fits cluster centroids and assigns rows to them.
// Fit and Predict are separate so held-out rows can be scored against a
// model fitted on other rows.
type Engine interface {
	Fit(m *features.Matrix) error
	Predict(m *features.Matrix) ([]int, error)
	FitPredict(m *features.Matrix) ([]int, error)
}

// Config holds k-means parameters.
type Config struct {
	K             int     // number of clusters (default: 5)
	MaxIterations int     // Lloyd iterations per run (default: 300)
	Tolerance     float64 // stop when centroid shift <= Tolerance * mean feature variance (default: 1e-4)
	InitRuns      int     // k-means++ restarts; lowest inertia wins (default: 10)
	Seed          int64   // seeds centroid initialization (default: 42)
}

// DefaultConfig returns the parameters used when nothing is configured.
func DefaultConfig() Config {
	return Config{K: 5, MaxIterations: 300, Tolerance: 1e-4, InitRuns: 10, Seed: 42}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.K <= 0 {
		c.K = d.K
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.Tolerance < 0 {
		c.Tolerance = d.Tolerance
	}
	if c.InitRuns <= 0 {
		c.InitRuns = d.InitRuns
	}
	return c
}

// KMeans is a k-means model. The zero value is not usable; call New.
type KMeans struct {
	cfg    Config
	logger *slog.Logger

	Centroids  [][]float64
	Labels     []int // labels of the rows passed to Fit
	Inertia    float64
	Iterations int
}

var _ Engine = (*KMeans)(nil)

// New creates an unfitted model. A nil logger discards diagnostics.
func New(cfg Config, logger *slog.Logger) *KMeans {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &KMeans{cfg: cfg.withDefaults(), logger: logger}
}

// Fit learns centroids from the rows of m. It fails with ErrInsufficientData
// before touching the model when m has fewer rows than clusters.
func (km *KMeans) Fit(m *features.Matrix) error {
	n := m.Len()
	if n < km.cfg.K {
		return errors.InsufficientDataf("cannot form %d clusters from %d rows", km.cfg.K, n)
	}

	rng := rand.New(rand.NewPCG(uint64(km.cfg.Seed), uint64(km.cfg.K)))
	threshold := km.cfg.Tolerance * meanVariance(m.Rows)

	var best *run
	for r := 0; r < km.cfg.InitRuns; r++ {
		res := km.lloyd(m.Rows, seedCentroids(m.Rows, km.cfg.K, rng), threshold)
		if best == nil || res.inertia < best.inertia {
			best = res
		}
	}

	km.Centroids = best.centroids
	km.Labels = best.labels
	km.Inertia = best.inertia
	km.Iterations = best.iterations

	km.logger.Debug("k-means fitted",
		"k", km.cfg.K,
		"rows", n,
		"inertia", km.Inertia,
		"iterations", km.Iterations,
	)
	return nil
}

// Predict assigns each row of m to its nearest fitted centroid.
func (km *KMeans) Predict(m *features.Matrix) ([]int, error) {
	if km.Centroids == nil {
		return nil, errors.Internal("k-means model is not fitted")
	}
	if dims := len(km.Centroids[0]); len(m.Columns) != dims {
		return nil, errors.Validationf("feature width %d does not match fitted width %d", len(m.Columns), dims)
	}

	labels := make([]int, m.Len())
	for i, row := range m.Rows {
		labels[i], _ = nearest(row, km.Centroids)
	}
	return labels, nil
}

// FitPredict fits the model on m and returns the labels of its rows.
func (km *KMeans) FitPredict(m *features.Matrix) ([]int, error) {
	if err := km.Fit(m); err != nil {
		return nil, err
	}
	return append([]int(nil), km.Labels...), nil
}

// Cluster fits a fresh model and returns one label in [0, k) per row.
func Cluster(m *features.Matrix, cfg Config) ([]int, error) {
	return New(cfg, nil).FitPredict(m)
}

type run struct {
	centroids  [][]float64
	labels     []int
	inertia    float64
	iterations int
}

// lloyd alternates assignment and centroid updates until the total squared
// centroid shift drops to threshold or the iteration cap is reached.
func (km *KMeans) lloyd(rows, centroids [][]float64, threshold float64) *run {
	k := len(centroids)
	dims := len(centroids[0])
	labels := make([]int, len(rows))
	dist := make([]float64, len(rows))

	iter := 0
	for iter < km.cfg.MaxIterations {
		iter++
		for i, row := range rows {
			labels[i], dist[i] = nearest(row, centroids)
		}

		next := make([][]float64, k)
		counts := make([]int, k)
		for c := range next {
			next[c] = make([]float64, dims)
		}
		for i, row := range rows {
			c := labels[i]
			counts[c]++
			if dims > 0 {
				vek.Add_Inplace(next[c], row)
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Relocate an empty cluster to the row farthest from its centroid.
				far := farthest(dist)
				copy(next[c], rows[far])
				dist[far] = 0
				continue
			}
			if dims > 0 {
				vek.DivNumber_Inplace(next[c], float64(counts[c]))
			}
		}

		shift := 0.0
		for c := range centroids {
			shift += squaredDistance(centroids[c], next[c])
		}
		centroids = next
		if shift <= threshold {
			break
		}
	}

	inertia := 0.0
	for i, row := range rows {
		var d float64
		labels[i], d = nearest(row, centroids)
		inertia += d
	}
	return &run{centroids: centroids, labels: labels, inertia: inertia, iterations: iter}
}

// seedCentroids picks k starting centroids with k-means++: the first
// uniformly, each next one with probability proportional to its squared
// distance from the closest centroid chosen so far.
func seedCentroids(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), rows[rng.IntN(len(rows))]...))

	closest := make([]float64, len(rows))
	for i, row := range rows {
		closest[i] = squaredDistance(row, centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range closest {
			total += d
		}

		pick := rng.IntN(len(rows))
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range closest {
				acc += d
				if acc >= target && d > 0 {
					pick = i
					break
				}
			}
		}

		c := append([]float64(nil), rows[pick]...)
		centroids = append(centroids, c)
		for i, row := range rows {
			if d := squaredDistance(row, c); d < closest[i] {
				closest[i] = d
			}
		}
	}
	return centroids
}

// nearest returns the closest centroid and the squared distance to it.
// Ties go to the lowest centroid index.
func nearest(row []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := squaredDistance(row, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func farthest(dist []float64) int {
	idx, best := 0, -1.0
	for i, d := range dist {
		if d > best {
			idx, best = i, d
		}
	}
	return idx
}

func squaredDistance(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	d := vek.Distance(a, b)
	return d * d
}

// meanVariance is the average per-column population variance, used to scale
// the convergence tolerance to the data.
func meanVariance(rows [][]float64) float64 {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0
	}
	dims := len(rows[0])
	col := make([]float64, len(rows))
	total := 0.0
	for j := 0; j < dims; j++ {
		for i, row := range rows {
			col[i] = row[j]
		}
		total += stat.PopVariance(col, nil)
	}
	return total / float64(dims)
}
