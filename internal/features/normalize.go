package features

import (
	"gonum.org/v1/gonum/stat"

	"github.com/listenupapp/bookclusters/internal/catalog"
)

// coerceColumn reads one column of the table as floats. Values that do not
// coerce are filled with the mean of the values that do. The second result is
// false when no value in the column coerces.
func coerceColumn(t *catalog.Table, column string) ([]float64, bool) {
	values := make([]float64, t.Len())
	missing := make([]bool, t.Len())
	present := make([]float64, 0, t.Len())

	for i, r := range t.Records {
		f, ok := r.Number(column)
		if !ok {
			missing[i] = true
			continue
		}
		values[i] = f
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil, false
	}

	mean := stat.Mean(present, nil)
	for i := range values {
		if missing[i] {
			values[i] = mean
		}
	}
	return values, true
}

// standardize rescales values in place to zero mean and unit population
// variance. Constant columns become all zeros.
func standardize(values []float64) {
	if len(values) == 0 {
		return
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 {
		std = 1
	}
	for i, v := range values {
		values[i] = (v - mean) / std
	}
}

// standardizeMatrix standardizes every column of m in place.
func standardizeMatrix(m *Matrix) {
	for j := range m.Columns {
		col := m.Column(j)
		standardize(col)
		for i, row := range m.Rows {
			row[j] = col[i]
		}
	}
}
