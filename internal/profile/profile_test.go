package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/errors"
)

func table(records ...catalog.Record) *catalog.Table {
	out, _ := catalog.Preprocess(catalog.NewTable(records))
	return out
}

func book(genre, form string, lexile any, fiction bool) catalog.Record {
	return catalog.Record{
		"genre":         []any{genre},
		"narrativeForm": form,
		"lexileLevel":   lexile,
		"isFiction":     fiction,
	}
}

func TestProfile_SizesSumToRowCount(t *testing.T) {
	tbl := table(
		book("fantasy", "prose", 500.0, true),
		book("mystery", "prose", 600.0, true),
		book("fantasy", "verse", 700.0, true),
		book("mystery", "prose", nil, true),
		book("fantasy", "prose", "unknown", true),
	)
	labels := []int{0, 1, 0, 1, 2}

	profiles, err := NewProfiler(3, nil).Profile(tbl, labels)
	require.NoError(t, err)

	total := 0
	for _, p := range profiles {
		total += p.Size
	}
	assert.Equal(t, tbl.Len(), total)
	assert.Equal(t, []int{0, 1, 2}, SortedLabels(profiles))
}

func TestProfile_OnlyPresentLabels(t *testing.T) {
	tbl := table(book("fantasy", "", 500.0, true), book("mystery", "", 600.0, true))

	profiles, err := NewProfiler(3, nil).Profile(tbl, []int{4, 4})
	require.NoError(t, err)

	require.Len(t, profiles, 1)
	assert.Equal(t, 2, profiles[4].Size)
	assert.Equal(t, 4, profiles[4].Label)
}

func TestProfile_DoesNotMutateLabels(t *testing.T) {
	tbl := table(book("fantasy", "prose", 500.0, true), book("mystery", "prose", 600.0, true))
	labels := []int{1, 0}

	_, err := NewProfiler(3, nil).Profile(tbl, labels)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, labels)
}

func TestProfile_TopGenresOrderAndTies(t *testing.T) {
	tbl := table(
		book("mystery", "", nil, true),
		book("fantasy", "", nil, true),
		book("horror", "", nil, true),
		book("fantasy", "", nil, true),
		book("romance", "", nil, true),
		book("mystery", "", nil, true),
		book("poetry", "", nil, true),
	)

	profiles, err := NewProfiler(3, nil).Profile(tbl, make([]int, tbl.Len()))
	require.NoError(t, err)

	assert.Equal(t, []GenreCount{
		{Genre: "mystery", Count: 2},
		{Genre: "fantasy", Count: 2},
		{Genre: "horror", Count: 1},
	}, profiles[0].TopGenres)
}

func TestProfile_NarrativeForm(t *testing.T) {
	tests := []struct {
		name  string
		forms []string
		want  string
	}{
		{name: "most frequent", forms: []string{"verse", "prose", "prose"}, want: "prose"},
		{name: "tie picks smallest", forms: []string{"verse", "prose"}, want: "prose"},
		{name: "empty values ignored", forms: []string{"", "", "verse"}, want: "verse"},
		{name: "no data", forms: []string{"", ""}, want: NotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]catalog.Record, len(tt.forms))
			for i, f := range tt.forms {
				records[i] = book("fantasy", f, nil, true)
			}
			tbl := table(records...)

			profiles, err := NewProfiler(3, nil).Profile(tbl, make([]int, tbl.Len()))
			require.NoError(t, err)
			assert.Equal(t, tt.want, profiles[0].NarrativeForm)
		})
	}
}

func TestProfile_AvgLexileExcludesNonNumeric(t *testing.T) {
	tbl := table(
		book("fantasy", "", 500.0, true),
		book("fantasy", "", "700", true),
		book("fantasy", "", "n/a", true),
		book("fantasy", "", nil, true),
		book("mystery", "", "", true),
		book("mystery", "", "HL", true),
	)

	profiles, err := NewProfiler(3, nil).Profile(tbl, []int{0, 0, 0, 0, 1, 1})
	require.NoError(t, err)

	assert.True(t, profiles[0].AvgLexile.Valid)
	assert.InDelta(t, 600.0, profiles[0].AvgLexile.Value, 1e-9)
	assert.Equal(t, "600.00", profiles[0].AvgLexile.String())

	assert.False(t, profiles[1].AvgLexile.Valid)
	assert.Equal(t, NotAvailable, profiles[1].AvgLexile.String())
}

func TestProfile_LabelCountMismatch(t *testing.T) {
	tbl := table(book("fantasy", "", nil, true))

	_, err := NewProfiler(3, nil).Profile(tbl, []int{0, 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestGenreDistribution(t *testing.T) {
	tbl := table(
		book("fantasy", "", nil, true),
		book("mystery", "", nil, true),
		book("fantasy", "", nil, true),
		book("horror", "", nil, true),
	)

	got := GenreDistribution(tbl, 2)
	assert.Equal(t, []GenreCount{{Genre: "fantasy", Count: 2}, {Genre: "mystery", Count: 1}}, got)
}

func TestLexileByCluster(t *testing.T) {
	tbl := table(
		book("fantasy", "", 400.0, true),
		book("fantasy", "", 800.0, true),
		book("fantasy", "", 600.0, true),
		book("mystery", "", "n/a", true),
		book("mystery", "", 900.0, true),
		book("mystery", "", "", true),
	)

	stats, err := LexileByCluster(tbl, []int{0, 0, 0, 1, 1, 2})
	require.NoError(t, err)

	require.Len(t, stats, 2, "cluster 2 has no usable level")
	assert.Equal(t, LexileStats{Label: 0, Count: 3, Min: 400, Median: 600, Max: 800, Mean: 600}, stats[0])
	assert.Equal(t, LexileStats{Label: 1, Count: 1, Min: 900, Median: 900, Max: 900, Mean: 900}, stats[1])
}

func TestLexileByCluster_NoLevels(t *testing.T) {
	tbl := table(book("fantasy", "", "", true), book("fantasy", "", nil, true))

	stats, err := LexileByCluster(tbl, []int{0, 1})
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestFictionRatioByCluster(t *testing.T) {
	tbl := table(
		book("fantasy", "", nil, true),
		book("history", "", nil, false),
		book("fantasy", "", nil, true),
		book("fantasy", "", nil, true),
	)

	ratios, err := FictionRatioByCluster(tbl, []int{0, 0, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, []FictionRatio{
		{Label: 0, Fiction: 1, Total: 2, Ratio: 0.5},
		{Label: 1, Fiction: 2, Total: 2, Ratio: 1},
	}, ratios)
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{1, 2, 3}))
	assert.Equal(t, 2.5, median([]float64{1, 2, 3, 4}))
}
