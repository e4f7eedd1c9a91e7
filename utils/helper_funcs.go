package utils

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/manningwu07/PosEnc/params"
)

// Debugf prints only when params.Config.Debug is set.
func Debugf(format string, args ...any) {
	if !params.Config.Debug {
		return
	}
	fmt.Printf("[debug] "+format+"\n", args...)
}

// RandomArray returns 'size' samples from U(-1/sqrt(v), 1/sqrt(v)).
// A nil src uses the global source.
func RandomArray(size int, v float64, src rand.Source) []float64 {
	dist := distuv.Uniform{
		Min: -1 / math.Sqrt(v+1e-12),
		Max: 1 / math.Sqrt(v+1e-12),
		Src: src,
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

// RandNormal returns 'size' samples from N(0, 1).
func RandNormal(size int, src rand.Source) []float64 {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	out := make([]float64, size)
	for i := range out {
		out[i] = dist.Rand()
	}
	return out
}

func ToDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}

// MatrixNorm is the Frobenius norm.
func MatrixNorm(m mat.Matrix) float64 {
	return mat.Norm(m, 2)
}
