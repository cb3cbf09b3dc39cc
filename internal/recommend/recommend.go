// Package recommend ranks catalog rows by cosine similarity to a user
// preference vector.
package recommend

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/viterin/vek"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/features"
)

// Preferences maps feature column names to desired values.
type Preferences map[string]any

// DefaultPreferences is the preference map used when none is given.
func DefaultPreferences() Preferences {
	return Preferences{catalog.FieldGenre: "fantasy", catalog.FieldIsFiction: 1}
}

// Recommender builds profile vectors and ranks rows against them.
type Recommender struct {
	logger *slog.Logger
}

// New creates a Recommender. A nil logger discards diagnostics.
func New(logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Recommender{logger: logger}
}

// BuildProfile returns a vector over columns where every preference whose
// key names a column exactly sets that position. Other keys are ignored, as
// are values that are not numbers.
func (r *Recommender) BuildProfile(prefs Preferences, columns []string) []float64 {
	vec := make([]float64, len(columns))
	matched := 0
	for j, col := range columns {
		raw, ok := prefs[col]
		if !ok {
			continue
		}
		v, ok := catalog.ToFloat(raw)
		if !ok {
			r.logger.Warn("preference value is not numeric", "column", col, "value", raw)
			continue
		}
		vec[j] = v
		matched++
	}

	if matched == 0 && len(prefs) > 0 {
		r.logger.Info("no preference matched a feature column", "preferences", len(prefs), "columns", len(columns))
	}
	return vec
}

// Recommend returns the Index labels of the n rows of m most similar to
// profile, most similar first. Equal similarities keep row order, so a zero
// profile returns the first n rows.
func (r *Recommender) Recommend(profile []float64, m *features.Matrix, n int) []int {
	type scored struct {
		pos int
		sim float64
	}

	scores := make([]scored, m.Len())
	for i, row := range m.Rows {
		scores[i] = scored{pos: i, sim: Cosine(profile, row)}
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		return cmp.Compare(b.sim, a.sim)
	})

	n = max(0, min(n, len(scores)))
	out := make([]int, n)
	for i := range out {
		out[i] = m.Index[scores[i].pos]
	}
	return out
}

// Cosine returns the cosine similarity of a and b, or 0 when either has no
// magnitude or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na, nb := vek.Norm(a), vek.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := vek.Dot(a, b) / (na * nb)
	if math.IsNaN(sim) {
		return 0
	}
	return sim
}
