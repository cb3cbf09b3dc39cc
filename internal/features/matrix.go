// Package features turns Book Records into the numeric feature matrix the
// clustering and recommendation stages work on: TF-IDF text vectors,
// standardized numeric columns, and a PCA projection of both.
package features

import (
	"fmt"
)

// Matrix is a dense row-major feature matrix.
//
// Index carries each row's position in the Book Record table it was derived
// from. Every transformation keeps Rows and Index in lockstep, so a row
// position in any derived matrix can always be traced back to its record.
type Matrix struct {
	Columns []string
	Index   []int
	Rows    [][]float64
}

// NewMatrix creates a zero matrix with rows labeled 0..rows-1.
func NewMatrix(rows int, columns []string) *Matrix {
	m := &Matrix{
		Columns: columns,
		Index:   make([]int, rows),
		Rows:    make([][]float64, rows),
	}
	for i := range m.Rows {
		m.Index[i] = i
		m.Rows[i] = make([]float64, len(columns))
	}
	return m
}

// Len returns the number of rows.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Rows)
}

// Dims returns the row and column counts.
func (m *Matrix) Dims() (rows, cols int) {
	return m.Len(), len(m.Columns)
}

// Row returns the values of row i. The slice is shared with the matrix.
func (m *Matrix) Row(i int) []float64 {
	return m.Rows[i]
}

// Column copies column j out of the matrix.
func (m *Matrix) Column(j int) []float64 {
	out := make([]float64, len(m.Rows))
	for i, row := range m.Rows {
		out[i] = row[j]
	}
	return out
}

// Subset returns the given row positions, in order, keeping their original
// Index labels. Row slices are shared, not copied.
func (m *Matrix) Subset(positions []int) *Matrix {
	out := &Matrix{
		Columns: m.Columns,
		Index:   make([]int, len(positions)),
		Rows:    make([][]float64, len(positions)),
	}
	for i, p := range positions {
		out.Index[i] = m.Index[p]
		out.Rows[i] = m.Rows[p]
	}
	return out
}

// Concat joins the columns of a and b side by side. Both must describe the
// same rows in the same order.
func Concat(a, b *Matrix) (*Matrix, error) {
	if a.Len() != b.Len() {
		return nil, fmt.Errorf("concat: row count mismatch %d != %d", a.Len(), b.Len())
	}
	for i := range a.Index {
		if a.Index[i] != b.Index[i] {
			return nil, fmt.Errorf("concat: row %d refers to records %d and %d", i, a.Index[i], b.Index[i])
		}
	}

	columns := make([]string, 0, len(a.Columns)+len(b.Columns))
	columns = append(columns, a.Columns...)
	columns = append(columns, b.Columns...)

	out := &Matrix{
		Columns: columns,
		Index:   append([]int(nil), a.Index...),
		Rows:    make([][]float64, a.Len()),
	}
	for i := range out.Rows {
		row := make([]float64, 0, len(columns))
		row = append(row, a.Rows[i]...)
		row = append(row, b.Rows[i]...)
		out.Rows[i] = row
	}
	return out, nil
}
