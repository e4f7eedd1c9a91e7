package utils

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestScaleAdd(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	n := mat.NewDense(2, 2, []float64{10, 20, 30, 40})
	got := Add(Scale(2, m), n)
	want := mat.NewDense(2, 2, []float64{12, 24, 36, 48})
	if !mat.Equal(got, want) {
		t.Fatalf("got %v", mat.Formatted(got))
	}
	if m.At(0, 0) != 1 {
		t.Fatal("Scale mutated its input")
	}
}

func TestRowSliceIsView(t *testing.T) {
	m := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	v := RowSlice(m, 2)
	if r, c := v.Dims(); r != 2 || c != 2 {
		t.Fatalf("dims %dx%d", r, c)
	}
	m.Set(1, 1, 99)
	if v.At(1, 1) != 99 {
		t.Fatal("RowSlice should share storage")
	}
}

func TestMaxAbsDiffAndMinMax(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{0, 1, -3, 2})
	b := mat.NewDense(2, 2, []float64{0, 1.5, -3, 2})
	if d := MaxAbsDiff(a, b); d != 0.5 {
		t.Fatalf("MaxAbsDiff=%g", d)
	}
	mn, mx := MinMax(a)
	if mn != -3 || mx != 2 {
		t.Fatalf("MinMax=%g,%g", mn, mx)
	}
}

func TestMatrixNormIsFrobenius(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{3, 0, 0, 4})
	if n := MatrixNorm(m); math.Abs(n-5) > 1e-12 {
		t.Fatalf("norm=%g", n)
	}
}

func TestRandomArrayBounds(t *testing.T) {
	src := rand.NewPCG(1, 2)
	xs := RandomArray(1000, 16, src)
	for _, x := range xs {
		if x < -0.25 || x > 0.25 {
			t.Fatalf("sample %g outside U(-1/4, 1/4)", x)
		}
	}
}

func TestRandNormalSeeded(t *testing.T) {
	a := RandNormal(64, rand.NewPCG(7, 7))
	b := RandNormal(64, rand.NewPCG(7, 7))
	mean := 0.0
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed gave different samples")
		}
		mean += a[i]
	}
	if math.Abs(mean/64) > 0.5 {
		t.Fatalf("mean %g implausible for N(0,1)", mean/64)
	}
}
