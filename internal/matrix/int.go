package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// IntMatrix is a dense row-major integer matrix.
type IntMatrix struct {
	rows, cols int
	data       []int64
}

func NewInt(rows, cols int) *IntMatrix {
	return &IntMatrix{rows: rows, cols: cols, data: make([]int64, rows*cols)}
}

// IntFromRows copies a rectangular [][]int64 into an IntMatrix.
func IntFromRows(rows [][]int64) (*IntMatrix, error) {
	if len(rows) == 0 {
		return NewInt(0, 0), nil
	}
	m := NewInt(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrDimensionMismatch, i, len(r), m.cols)
		}
		copy(m.data[i*m.cols:], r)
	}
	return m, nil
}

// MustIntFromRows is IntFromRows for literals in code and tests.
func MustIntFromRows(rows [][]int64) *IntMatrix {
	m, err := IntFromRows(rows)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *IntMatrix) Rows() int { return m.rows }
func (m *IntMatrix) Cols() int { return m.cols }

func (m *IntMatrix) IsSquare() bool { return m.rows == m.cols }

func (m *IntMatrix) At(i, j int) int64 { return m.data[i*m.cols+j] }

func (m *IntMatrix) Set(i, j int, v int64) { m.data[i*m.cols+j] = v }

func (m *IntMatrix) Row(i int) []int64 {
	out := make([]int64, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

func (m *IntMatrix) Clone() *IntMatrix {
	c := NewInt(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

func (m *IntMatrix) Equal(o *IntMatrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.data {
		if m.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

func (m *IntMatrix) IsSymmetric() bool {
	if !m.IsSquare() {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := i + 1; j < m.cols; j++ {
			if m.At(i, j) != m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// IsSkewSymmetric reports whether m = -mᵀ (which forces a zero diagonal).
func (m *IntMatrix) IsSkewSymmetric() bool {
	if !m.IsSquare() {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := i; j < m.cols; j++ {
			if m.At(i, j) != -m.At(j, i) {
				return false
			}
		}
	}
	return true
}

// Dense converts m to a gonum float64 matrix.
func (m *IntMatrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, len(m.data))
	for i, v := range m.data {
		data[i] = float64(v)
	}
	return mat.NewDense(m.rows, m.cols, data)
}

// MulVec returns m·x.
func (m *IntMatrix) MulVec(x []float64) ([]float64, error) {
	if len(x) != m.cols {
		return nil, fmt.Errorf("%w: vector has %d entries, want %d", ErrDimensionMismatch, len(x), m.cols)
	}
	y := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		sum := 0.0
		row := m.data[i*m.cols : (i+1)*m.cols]
		for j, a := range row {
			if a != 0 {
				sum += float64(a) * x[j]
			}
		}
		y[i] = sum
	}
	return y, nil
}

// String implements fmt.Stringer via Format.
func (m *IntMatrix) String() string { return Format(m) }
