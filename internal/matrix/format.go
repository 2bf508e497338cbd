package matrix

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Format renders an integer matrix one bracketed row per line with
// right-aligned columns:
//
//	[ 0  1 -1]
//	[-1  0  1]
//	[ 1 -1  0]
func Format(m *IntMatrix) string {
	if m == nil || m.rows == 0 {
		return "[]\n"
	}
	width := 1
	for _, v := range m.data {
		if w := len(strconv.FormatInt(v, 10)); w > width {
			width = w
		}
	}
	var sb strings.Builder
	for i := 0; i < m.rows; i++ {
		sb.WriteByte('[')
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%*d", width, m.At(i, j))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}

// FormatDense renders a float matrix with gonum's formatter.
func FormatDense(m mat.Matrix, prec int) string {
	if r, c := m.Dims(); r == 0 || c == 0 {
		return "[]\n"
	}
	return fmt.Sprintf("%.*v\n", prec, mat.Formatted(m, mat.Squeeze()))
}
