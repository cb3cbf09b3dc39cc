// Package profile summarizes clusters of Book Records.
package profile

import (
	"cmp"
	"log/slog"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/errors"
)

// NotAvailable is shown for aggregates a cluster has no data for.
const NotAvailable = "N/A"

// GenreCount is one genre value and how many records carry it.
type GenreCount struct {
	Genre string
	Count int
}

// Level is an optional reading level. The zero value is unavailable.
type Level struct {
	Value float64
	Valid bool
}

// String formats the level, or returns NotAvailable.
func (l Level) String() string {
	if !l.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(l.Value, 'f', 2, 64)
}

// Profile summarizes one cluster.
type Profile struct {
	Label         int
	Size          int
	TopGenres     []GenreCount // most frequent first
	NarrativeForm string
	AvgLexile     Level
}

// Profiler builds cluster profiles from records paired with their labels.
type Profiler struct {
	topGenres int
	logger    *slog.Logger
}

// NewProfiler creates a profiler that keeps topGenres genres per cluster.
func NewProfiler(topGenres int, logger *slog.Logger) *Profiler {
	if topGenres <= 0 {
		topGenres = 3
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Profiler{topGenres: topGenres, logger: logger}
}

// Profile returns one profile per label present in labels. labels[i] belongs
// to t.Records[i]. Neither the table nor the labels are modified.
func (p *Profiler) Profile(t *catalog.Table, labels []int) (map[int]Profile, error) {
	groups, err := groupRows(t, labels)
	if err != nil {
		return nil, err
	}

	profiles := make(map[int]Profile, len(groups))
	for label, rows := range groups {
		profiles[label] = Profile{
			Label:         label,
			Size:          len(rows),
			TopGenres:     topValues(t, rows, catalog.FieldGenre, p.topGenres),
			NarrativeForm: modalValue(t, rows, catalog.FieldNarrativeForm),
			AvgLexile:     meanLevel(t, rows),
		}
	}

	p.logger.Debug("clusters profiled", "clusters", len(profiles), "rows", t.Len())
	return profiles, nil
}

// SortedLabels returns the profile labels in ascending order.
func SortedLabels(profiles map[int]Profile) []int {
	labels := make([]int, 0, len(profiles))
	for l := range profiles {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// groupRows maps each label to its row positions, in row order.
func groupRows(t *catalog.Table, labels []int) (map[int][]int, error) {
	if len(labels) != t.Len() {
		return nil, errors.Validationf("got %d labels for %d records", len(labels), t.Len())
	}
	groups := make(map[int][]int)
	for row, label := range labels {
		groups[label] = append(groups[label], row)
	}
	return groups, nil
}

// topValues counts the non-empty values of field over rows and returns the
// n most frequent. Equal counts keep the order values were first seen in.
func topValues(t *catalog.Table, rows []int, field string, n int) []GenreCount {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		v := t.Records[row].Text(field)
		if v == "" {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	out := make([]GenreCount, len(order))
	for i, v := range order {
		out[i] = GenreCount{Genre: v, Count: counts[v]}
	}
	slices.SortStableFunc(out, func(a, b GenreCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// modalValue returns the most frequent non-empty value of field, the
// smallest one on ties, or NotAvailable when there is none.
func modalValue(t *catalog.Table, rows []int, field string) string {
	counts := make(map[string]int)
	for _, row := range rows {
		if v := t.Records[row].Text(field); v != "" {
			counts[v]++
		}
	}

	best, bestCount := NotAvailable, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

// lexileValues returns the coercible reading levels of rows.
func lexileValues(t *catalog.Table, rows []int) []float64 {
	var values []float64
	for _, row := range rows {
		if v, ok := t.Records[row].Number(catalog.FieldLexileLevel); ok {
			values = append(values, v)
		}
	}
	return values
}

func meanLevel(t *catalog.Table, rows []int) Level {
	values := lexileValues(t, rows)
	if len(values) == 0 {
		return Level{}
	}
	return Level{Value: stat.Mean(values, nil), Valid: true}
}
