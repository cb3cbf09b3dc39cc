package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclusters/internal/errors"
	"github.com/listenupapp/bookclusters/internal/features"
)

// blobs returns three well separated groups of four points each.
func blobs() *features.Matrix {
	centers := [][]float64{{0, 0}, {10, 10}, {-10, 10}}
	offsets := [][]float64{{0.1, 0}, {-0.1, 0}, {0, 0.1}, {0, -0.1}}

	m := features.NewMatrix(12, []string{"PCA_0", "PCA_1"})
	for i := range m.Rows {
		c, o := centers[i/4], offsets[i%4]
		m.Rows[i][0] = c[0] + o[0]
		m.Rows[i][1] = c[1] + o[1]
	}
	return m
}

func TestCluster_LabelsInRange(t *testing.T) {
	m := blobs()

	labels, err := Cluster(m, Config{K: 3, Seed: 42})
	require.NoError(t, err)
	require.Len(t, labels, m.Len())

	for _, l := range labels {
		assert.GreaterOrEqual(t, l, 0)
		assert.Less(t, l, 3)
	}
}

func TestCluster_RecoversSeparatedGroups(t *testing.T) {
	labels, err := Cluster(blobs(), Config{K: 3, Seed: 42})
	require.NoError(t, err)

	for g := 0; g < 3; g++ {
		for i := 1; i < 4; i++ {
			assert.Equal(t, labels[g*4], labels[g*4+i], "group %d split", g)
		}
	}
	assert.NotEqual(t, labels[0], labels[4])
	assert.NotEqual(t, labels[0], labels[8])
	assert.NotEqual(t, labels[4], labels[8])
}

func TestCluster_InsufficientData(t *testing.T) {
	m := features.NewMatrix(2, []string{"PCA_0"})

	labels, err := Cluster(m, Config{K: 3})
	require.Error(t, err)
	assert.Nil(t, labels)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestCluster_SameSeedSameLabels(t *testing.T) {
	m := blobs()

	first, err := Cluster(m, Config{K: 3, Seed: 7})
	require.NoError(t, err)
	second, err := Cluster(m, Config{K: 3, Seed: 7})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCluster_ExactlyKRows(t *testing.T) {
	m := features.NewMatrix(3, []string{"PCA_0"})
	m.Rows[0][0], m.Rows[1][0], m.Rows[2][0] = -5, 0, 5

	labels, err := Cluster(m, Config{K: 3, Seed: 1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2}, labels)
}

func TestCluster_ZeroWidthFeatures(t *testing.T) {
	m := features.NewMatrix(4, []string{})

	labels, err := Cluster(m, Config{K: 2})
	require.NoError(t, err)
	assert.Len(t, labels, 4)
}

func TestKMeans_FitThenPredict(t *testing.T) {
	m := blobs()
	km := New(Config{K: 3, Seed: 42}, nil)
	require.NoError(t, km.Fit(m))

	assert.Len(t, km.Centroids, 3)
	assert.Len(t, km.Labels, m.Len())
	assert.Less(t, km.Inertia, 1.0)

	probe := features.NewMatrix(2, m.Columns)
	probe.Rows[0] = []float64{9.5, 10.2}
	probe.Rows[1] = []float64{-9.8, 9.9}

	got, err := km.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, km.Labels[4], got[0])
	assert.Equal(t, km.Labels[8], got[1])
}

func TestKMeans_PredictBeforeFit(t *testing.T) {
	_, err := New(DefaultConfig(), nil).Predict(blobs())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInternal))
}

func TestKMeans_PredictWidthMismatch(t *testing.T) {
	km := New(Config{K: 2, Seed: 1}, nil)
	require.NoError(t, km.Fit(blobs()))

	_, err := km.Predict(features.NewMatrix(1, []string{"PCA_0"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestKMeans_FitPredictCopiesLabels(t *testing.T) {
	km := New(Config{K: 3, Seed: 42}, nil)
	labels, err := km.FitPredict(blobs())
	require.NoError(t, err)

	labels[0] = 99
	assert.NotEqual(t, 99, km.Labels[0])
}

func TestMeanVariance(t *testing.T) {
	rows := [][]float64{
		{1, 10},
		{3, 10},
		{5, 10},
		{7, 10},
	}
	// Column 0 has population variance 5, column 1 has none.
	assert.InDelta(t, 2.5, meanVariance(rows), 1e-12)
	assert.Zero(t, meanVariance(nil))
	assert.Zero(t, meanVariance([][]float64{{}, {}}))
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 5, cfg.K)
	assert.Equal(t, 300, cfg.MaxIterations)
	assert.Equal(t, 10, cfg.InitRuns)
}
