package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix functions used by the encoder and the demo.

// r = rows of matrix
// c = columns of matrix
// o = output
// m = matrix input number 1
// n = matrix input number 2

func Scale(s float64, m mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Scale(s, m)
	return o
}

func Add(m, n mat.Matrix) mat.Matrix {
	r, c := m.Dims()
	o := mat.NewDense(r, c, nil)
	o.Add(m, n)
	return o
}

// RowSlice returns the first k rows of m as a view (no copy).
func RowSlice(m *mat.Dense, k int) *mat.Dense {
	_, c := m.Dims()
	return m.Slice(0, k, 0, c).(*mat.Dense)
}

// MaxAbsDiff returns max |a_ij - b_ij|. Shapes must match.
func MaxAbsDiff(a, b mat.Matrix) float64 {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		panic(fmt.Sprintf("MaxAbsDiff: shape %dx%d vs %dx%d", ra, ca, rb, cb))
	}
	worst := 0.0
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if d := math.Abs(a.At(i, j) - b.At(i, j)); d > worst {
				worst = d
			}
		}
	}
	return worst
}

// MinMax returns the smallest and largest entry of m.
func MinMax(m mat.Matrix) (float64, float64) {
	r, c := m.Dims()
	mn, mx := math.Inf(1), math.Inf(-1)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
		}
	}
	return mn, mx
}

// PrintMatrix prints a Gonum matrix in a compact form.
func PrintMatrix(m mat.Matrix, name string) {
	r, c := m.Dims()
	fmt.Printf("Matrix %s (%dx%d):\n", name, r, c)
	fa := mat.Formatted(m, mat.Prefix("  "), mat.Squeeze(), mat.Excerpt(3))
	fmt.Printf("%v\n", fa)
}
