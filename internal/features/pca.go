package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ComponentName returns the name of the i-th principal component column.
func ComponentName(i int) string {
	return fmt.Sprintf("PCA_%d", i)
}

// AvailableRank is the largest number of components a matrix of this shape
// can be reduced to. Centering removes one degree of freedom, so n rows span
// at most n-1 directions; a single row still yields one (all-zero) component.
func AvailableRank(rows, cols int) int {
	if rows < 1 || cols < 1 {
		return 0
	}
	return max(1, min(rows-1, cols))
}

// Reduce projects m onto its first nComponents principal components, clipped
// to the available rank. Columns are centered before a thin SVD; each
// component's sign is chosen so its largest-magnitude loading is positive,
// which makes the projection reproducible. The result keeps m's row Index.
func Reduce(m *Matrix, nComponents int) (*Matrix, error) {
	rows, cols := m.Dims()
	k := min(nComponents, AvailableRank(rows, cols))
	if k <= 0 {
		return &Matrix{
			Columns: []string{},
			Index:   append([]int(nil), m.Index...),
			Rows:    emptyRows(rows),
		}, nil
	}

	data := make([]float64, 0, rows*cols)
	for _, row := range m.Rows {
		data = append(data, row...)
	}
	x := mat.NewDense(rows, cols, data)

	for j := 0; j < cols; j++ {
		mean := stat.Mean(mat.Col(nil, j, x), nil)
		for i := 0; i < rows; i++ {
			x.Set(i, j, x.At(i, j)-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("pca: SVD factorization failed for %dx%d matrix", rows, cols)
	}
	var v mat.Dense
	svd.VTo(&v)

	loadings := mat.DenseCopyOf(v.Slice(0, cols, 0, k))
	for c := 0; c < k; c++ {
		best, bestAbs := 0.0, -1.0
		for r := 0; r < cols; r++ {
			if a := math.Abs(loadings.At(r, c)); a > bestAbs {
				best, bestAbs = loadings.At(r, c), a
			}
		}
		if best < 0 {
			for r := 0; r < cols; r++ {
				loadings.Set(r, c, -loadings.At(r, c))
			}
		}
	}

	var projected mat.Dense
	projected.Mul(x, loadings)

	columns := make([]string, k)
	for c := range columns {
		columns[c] = ComponentName(c)
	}
	out := &Matrix{
		Columns: columns,
		Index:   append([]int(nil), m.Index...),
		Rows:    make([][]float64, rows),
	}
	for i := range out.Rows {
		out.Rows[i] = mat.Row(nil, i, &projected)
	}
	return out, nil
}

func emptyRows(n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = []float64{}
	}
	return rows
}
