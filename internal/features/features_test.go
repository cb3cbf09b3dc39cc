package features

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/listenupapp/bookclusters/internal/catalog"
)

func newTestBuilder(t *testing.T, opts Options) *Builder {
	t.Helper()
	b, err := NewBuilder(opts, nil)
	require.NoError(t, err)
	return b
}

func bookTable(n int) *catalog.Table {
	synopses := []string{
		"A young wizard discovers a hidden school of magic and dragons",
		"A detective investigates a murder in a quiet village",
		"Dragons return to the kingdom and a wizard must fight",
		"The inspector follows clues about the missing heiress",
	}
	records := make([]catalog.Record, n)
	for i := range records {
		genre := "fantasy"
		if i%2 == 1 {
			genre = "mystery"
		}
		records[i] = catalog.Record{
			"title":       fmt.Sprintf("Book %d", i),
			"synopsis":    synopses[i%len(synopses)],
			"subject":     []any{genre, "adventure"},
			"genre":       []any{genre},
			"isFiction":   true,
			"lexileLevel": float64(500 + 40*i),
		}
	}
	out, _ := catalog.Preprocess(catalog.NewTable(records))
	return out
}

func TestTokenizer_DropsStopWordsAndShortTokens(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	terms, err := tok.Tokens("The Wizard and a DRAGON of X")
	require.NoError(t, err)

	assert.Equal(t, []string{"wizard", "dragon"}, terms)
}

func TestTokenizer_FlattensHTML(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	terms, err := tok.Tokens("<p>Brave <strong>knights</strong></p><br/>")
	require.NoError(t, err)

	assert.Equal(t, []string{"brave", "knights"}, terms)
	for _, term := range terms {
		assert.NotContains(t, term, "<")
	}
}

func TestTokenizer_InvalidUTF8KeepsLaterTerms(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	terms, err := tok.Tokens("caf\xff\xfe dragon hoard")
	require.NoError(t, err)

	assert.Equal(t, []string{"caf", "dragon", "hoard"}, terms)
}

func TestTokenizer_DropsLinkTargets(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	terms, err := tok.Tokens(`<p>A <a href="https://example.com/x">dragon</a> tale <img src="https://cdn.example.com/c.jpg" alt="cover"></p>`)
	require.NoError(t, err)

	assert.Contains(t, terms, "dragon")
	assert.Contains(t, terms, "tale")
	assert.NotContains(t, terms, "https")
	assert.NotContains(t, terms, "example.com")
	assert.NotContains(t, terms, "cdn.example.com")
}

func TestTokenizer_EmptyText(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	terms, err := tok.Tokens("   ")
	require.NoError(t, err)
	assert.Empty(t, terms)
}

func TestVectorizer_FitTransform(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)
	v := NewVectorizer(tok, 100)

	vocab, rows, err := v.FitTransform([]string{"dragon wizard", "dragon detective", ""})
	require.NoError(t, err)

	assert.Equal(t, []string{"detective", "dragon", "wizard"}, vocab)
	require.Len(t, rows, 3)

	// Rare terms outweigh the shared one.
	assert.Greater(t, rows[0][2], rows[0][1])
	assert.Zero(t, rows[0][0])
	assert.InDelta(t, 1.0, floats.Norm(rows[0], 2), 1e-9)

	// Empty documents contribute zero vectors, not errors.
	assert.Equal(t, []float64{0, 0, 0}, rows[2])
}

func TestVectorizer_MaxFeaturesKeepsMostFrequent(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)
	v := NewVectorizer(tok, 2)

	vocab, rows, err := v.FitTransform([]string{"castle castle castle river", "castle forest forest", "river"})
	require.NoError(t, err)

	// castle=4, forest=2, river=2: tie between forest and river goes alphabetical.
	assert.Equal(t, []string{"castle", "forest"}, vocab)
	for _, row := range rows {
		assert.Len(t, row, 2)
	}
}

func TestEngineerText_ColumnNamesAndMissingColumn(t *testing.T) {
	b := newTestBuilder(t, Options{TextColumns: []string{"synopsis", "topic"}, MaxFeatures: 5})
	table := bookTable(4)
	report := &Report{Vocabulary: map[string]int{}}

	m, err := b.EngineerText(table, report)
	require.NoError(t, err)

	assert.Equal(t, table.Len(), m.Len())
	require.Len(t, m.Columns, 5)
	for i, c := range m.Columns {
		assert.Equal(t, fmt.Sprintf("synopsis_tfidf_%d", i), c)
	}
	assert.Contains(t, report.SkippedColumns, "topic")
}

func TestEngineerText_AllEmptyColumn(t *testing.T) {
	b := newTestBuilder(t, Options{TextColumns: []string{"synopsis"}})
	table := catalog.NewTable([]catalog.Record{{"synopsis": ""}, {"synopsis": nil}})
	table, _ = catalog.Preprocess(table)
	report := &Report{Vocabulary: map[string]int{}}

	m, err := b.EngineerText(table, report)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Empty(t, m.Columns)
	assert.Equal(t, 0, report.Vocabulary["synopsis"])
}

func TestNormalizeNumeric_FillsMeanAndStandardizes(t *testing.T) {
	b := newTestBuilder(t, Options{})
	table := catalog.NewTable([]catalog.Record{
		{"lexileLevel": 400.0, "seriesBookNumber": "n/a"},
		{"lexileLevel": "not a number", "seriesBookNumber": ""},
		{"lexileLevel": 800.0, "seriesBookNumber": nil},
	})
	table, _ = catalog.Preprocess(table)
	report := &Report{}

	m := b.NormalizeNumeric(table, report)

	assert.Equal(t, []string{"lexileLevel"}, m.Columns)
	assert.Equal(t, []string{"seriesBookNumber"}, report.SkippedColumns)

	// Missing value takes the mean (600), which standardizes to 0.
	col := m.Column(0)
	assert.InDelta(t, -math.Sqrt(1.5), col[0], 1e-9)
	assert.InDelta(t, 0, col[1], 1e-9)
	assert.InDelta(t, math.Sqrt(1.5), col[2], 1e-9)
}

func TestStandardize_ConstantColumn(t *testing.T) {
	values := []float64{3, 3, 3}
	standardize(values)
	assert.Equal(t, []float64{0, 0, 0}, values)
}

func TestReduce_ComponentCountIsClippedToRank(t *testing.T) {
	tests := []struct {
		rows, cols, requested, want int
	}{
		{rows: 10, cols: 4, requested: 50, want: 4},
		{rows: 3, cols: 8, requested: 50, want: 2},
		{rows: 8, cols: 8, requested: 50, want: 7},
		{rows: 10, cols: 8, requested: 2, want: 2},
		{rows: 1, cols: 3, requested: 50, want: 1},
		{rows: 5, cols: 0, requested: 50, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%dx%d->%d", tt.rows, tt.cols, tt.requested), func(t *testing.T) {
			columns := make([]string, tt.cols)
			for j := range columns {
				columns[j] = fmt.Sprintf("f%d", j)
			}
			m := NewMatrix(tt.rows, columns)
			for i := range m.Rows {
				for j := range m.Rows[i] {
					m.Rows[i][j] = math.Sin(float64(i*7 + j*3 + 1))
				}
			}

			reduced, err := Reduce(m, tt.requested)
			require.NoError(t, err)

			assert.Equal(t, tt.rows, reduced.Len())
			assert.Len(t, reduced.Columns, tt.want)
			assert.Equal(t, m.Index, reduced.Index)
			for i := range reduced.Rows {
				assert.Len(t, reduced.Rows[i], tt.want)
			}
			if tt.want > 0 {
				assert.Equal(t, "PCA_0", reduced.Columns[0])
			}
		})
	}
}

func TestAvailableRank(t *testing.T) {
	assert.Equal(t, 4, AvailableRank(10, 4))
	assert.Equal(t, 4, AvailableRank(5, 10))
	assert.Equal(t, 1, AvailableRank(2, 10))
	assert.Equal(t, 1, AvailableRank(1, 10))
	assert.Equal(t, 0, AvailableRank(0, 10))
	assert.Equal(t, 0, AvailableRank(10, 0))
}

func TestReduce_FirstComponentCapturesDominantAxis(t *testing.T) {
	m := NewMatrix(4, []string{"x", "y"})
	points := [][]float64{{-3, 0.1}, {-1, -0.1}, {1, 0.1}, {3, -0.1}}
	copy(m.Rows, points)

	reduced, err := Reduce(m, 1)
	require.NoError(t, err)

	// Sign is fixed so the dominant loading is positive: scores follow x.
	for i := 1; i < reduced.Len(); i++ {
		assert.Greater(t, reduced.Rows[i][0], reduced.Rows[i-1][0])
	}
	assert.InDelta(t, -3, reduced.Rows[0][0], 0.05)
}

func TestReduce_IsDeterministic(t *testing.T) {
	m := NewMatrix(6, []string{"a", "b", "c"})
	for i := range m.Rows {
		m.Rows[i] = []float64{float64(i), math.Cos(float64(i)), float64(i * i % 5)}
	}

	first, err := Reduce(m, 3)
	require.NoError(t, err)
	second, err := Reduce(m, 3)
	require.NoError(t, err)

	assert.Equal(t, first.Rows, second.Rows)
}

func TestEngineer_PreservesRowAlignment(t *testing.T) {
	b := newTestBuilder(t, Options{MaxFeatures: 10, Components: 50})
	table := bookTable(12)

	m, report, err := b.Engineer(table)
	require.NoError(t, err)

	assert.Equal(t, table.Len(), m.Len())
	for i, idx := range m.Index {
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, min(50, report.InputColumns, table.Len()-1), len(m.Columns))
	assert.Equal(t, 50, report.ClippedToRankOf)
	assert.Contains(t, report.NumericColumns, "lexileLevel")
	assert.Contains(t, report.SkippedColumns, "topic")
}

func TestMatrix_SubsetKeepsIndexLabels(t *testing.T) {
	m := NewMatrix(4, []string{"a"})
	for i := range m.Rows {
		m.Rows[i][0] = float64(i * 10)
	}

	sub := m.Subset([]int{3, 1})

	assert.Equal(t, []int{3, 1}, sub.Index)
	assert.Equal(t, 30.0, sub.Row(0)[0])
	assert.Equal(t, []string{"a"}, sub.Columns)
}

func TestConcat_RejectsMisalignedRows(t *testing.T) {
	a := NewMatrix(2, []string{"a"})
	b := NewMatrix(3, []string{"b"})

	_, err := Concat(a, b)
	assert.Error(t, err)

	c := NewMatrix(2, []string{"c"})
	c.Index = []int{1, 0}
	_, err = Concat(a, c)
	assert.Error(t, err)
}
