package profile

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/listenupapp/bookclusters/internal/catalog"
)

// LexileStats describes the reading levels of one cluster.
type LexileStats struct {
	Label  int
	Count  int
	Min    float64
	Median float64
	Max    float64
	Mean   float64
}

// FictionRatio is the share of fiction titles in one cluster.
type FictionRatio struct {
	Label   int
	Fiction int
	Total   int
	Ratio   float64
}

// GenreDistribution counts genre values over the whole table and returns the
// topN most frequent.
func GenreDistribution(t *catalog.Table, topN int) []GenreCount {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return topValues(t, rows, catalog.FieldGenre, topN)
}

// LexileByCluster returns reading-level statistics per cluster, ordered by
// label. Clusters without a single coercible level are left out, so the
// result is empty when the table has no usable levels at all.
func LexileByCluster(t *catalog.Table, labels []int) ([]LexileStats, error) {
	groups, err := groupRows(t, labels)
	if err != nil {
		return nil, err
	}

	var out []LexileStats
	for _, label := range sortedKeys(groups) {
		values := lexileValues(t, groups[label])
		if len(values) == 0 {
			continue
		}
		slices.Sort(values)
		out = append(out, LexileStats{
			Label:  label,
			Count:  len(values),
			Min:    values[0],
			Median: median(values),
			Max:    values[len(values)-1],
			Mean:   stat.Mean(values, nil),
		})
	}
	return out, nil
}

// FictionRatioByCluster returns the fiction share per cluster, ordered by
// label. Records whose fiction flag is missing count toward the total only.
func FictionRatioByCluster(t *catalog.Table, labels []int) ([]FictionRatio, error) {
	groups, err := groupRows(t, labels)
	if err != nil {
		return nil, err
	}

	out := make([]FictionRatio, 0, len(groups))
	for _, label := range sortedKeys(groups) {
		rows := groups[label]
		r := FictionRatio{Label: label, Total: len(rows)}
		for _, row := range rows {
			if v, ok := t.Records[row].Number(catalog.FieldIsFiction); ok && v != 0 {
				r.Fiction++
			}
		}
		r.Ratio = float64(r.Fiction) / float64(r.Total)
		out = append(out, r)
	}
	return out, nil
}

func sortedKeys(groups map[int][]int) []int {
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// median expects sorted values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
