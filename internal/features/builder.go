package features

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/errors"
)

// Options configures the Builder.
type Options struct {
	TextColumns []string // defaults to catalog.TextFields
	MaxFeatures int      // vocabulary cap per text column (default: 100)
	Components  int      // PCA target before rank clipping (default: 50)
}

// Report describes what one Engineer call produced.
type Report struct {
	Vocabulary      map[string]int // text column -> vocabulary size
	NumericColumns  []string       // numeric columns that made it into the feature space
	SkippedColumns  []string       // text or numeric columns that contributed nothing
	InputColumns    int            // width of the space PCA reduced
	Components      int            // width after reduction
	ClippedToRankOf int            // requested components when clipping happened, else 0
}

// Builder reduces Book Records to the numeric feature matrix.
type Builder struct {
	opts       Options
	vectorizer *Vectorizer
	logger     *slog.Logger
}

// NewBuilder creates a feature builder. A nil logger discards diagnostics.
func NewBuilder(opts Options, logger *slog.Logger) (*Builder, error) {
	if opts.TextColumns == nil {
		opts.TextColumns = catalog.TextFields
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = 100
	}
	if opts.Components <= 0 {
		opts.Components = 50
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tokenizer, err := NewTokenizer()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build text analyzer")
	}

	return &Builder{
		opts:       opts,
		vectorizer: NewVectorizer(tokenizer, opts.MaxFeatures),
		logger:     logger,
	}, nil
}

// Engineer runs text vectorization, numeric normalization, and PCA over the
// table. The returned matrix has one row per record, in table order, with
// columns PCA_0..PCA_{k-1}.
func (b *Builder) Engineer(t *catalog.Table) (*Matrix, *Report, error) {
	start := time.Now()
	report := &Report{Vocabulary: make(map[string]int)}

	text, err := b.EngineerText(t, report)
	if err != nil {
		return nil, nil, err
	}
	numeric := b.NormalizeNumeric(t, report)

	combined, err := Concat(numeric, text)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternal, "combine feature columns")
	}
	// Text weights share the numeric columns' scale before PCA.
	standardizeMatrix(combined)
	report.InputColumns = len(combined.Columns)

	reduced, err := b.ReduceDimensions(combined, report)
	if err != nil {
		return nil, nil, err
	}

	b.logger.Info("features engineered",
		"rows", reduced.Len(),
		"input_columns", report.InputColumns,
		"components", report.Components,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return reduced, report, nil
}

// EngineerText vectorizes every configured text column. A column missing from
// the table, or one whose documents yield no terms, contributes no columns.
func (b *Builder) EngineerText(t *catalog.Table, report *Report) (*Matrix, error) {
	out := NewMatrix(t.Len(), []string{})

	for _, column := range b.opts.TextColumns {
		if !t.HasColumn(column) {
			b.logger.Warn("text column absent from catalog, treated as empty", "column", column)
			report.SkippedColumns = append(report.SkippedColumns, column)
			continue
		}

		docs := make([]string, t.Len())
		for i, r := range t.Records {
			docs[i] = r.Text(column)
		}

		vocab, rows, err := b.vectorizer.FitTransform(docs)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "vectorize %s", column)
		}
		report.Vocabulary[column] = len(vocab)
		if len(vocab) == 0 {
			b.logger.Warn("text column has empty vocabulary", "column", column)
			report.SkippedColumns = append(report.SkippedColumns, column)
			continue
		}

		names := make([]string, len(vocab))
		for i := range vocab {
			names[i] = fmt.Sprintf("%s_tfidf_%d", column, i)
		}
		block := NewMatrix(t.Len(), names)
		copy(block.Rows, rows)

		if out, err = Concat(out, block); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "append text features")
		}
		b.logger.Debug("text column vectorized", "column", column, "terms", len(vocab))
	}
	return out, nil
}

// NormalizeNumeric coerces, mean-fills, and standardizes every numeric column
// of the table. Columns with no coercible value are skipped with a warning.
func (b *Builder) NormalizeNumeric(t *catalog.Table, report *Report) *Matrix {
	var names []string
	var columns [][]float64

	for _, column := range catalog.NumericColumns(t) {
		values, ok := coerceColumn(t, column)
		if !ok {
			b.logger.Warn("numeric column has no numeric values, skipped", "column", column)
			report.SkippedColumns = append(report.SkippedColumns, column)
			continue
		}
		standardize(values)
		names = append(names, column)
		columns = append(columns, values)
	}
	report.NumericColumns = names

	out := NewMatrix(t.Len(), names)
	if names == nil {
		out.Columns = []string{}
	}
	for j, values := range columns {
		for i, v := range values {
			out.Rows[i][j] = v
		}
	}
	return out
}

// ReduceDimensions applies PCA with the configured component count, clipped
// to the rank the matrix can support.
func (b *Builder) ReduceDimensions(m *Matrix, report *Report) (*Matrix, error) {
	rows, cols := m.Dims()
	if rank := AvailableRank(rows, cols); rank < b.opts.Components {
		b.logger.Info("pca target clipped to available rank",
			"requested", b.opts.Components,
			"rank", rank,
		)
		report.ClippedToRankOf = b.opts.Components
	}

	reduced, err := Reduce(m, b.opts.Components)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "reduce dimensions")
	}
	report.Components = len(reduced.Columns)
	return reduced, nil
}
