package correlation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// diagonalFloor bounds the diagonal residual from below. The heuristic matrix
// is indefinite for some ticker mixes.
const diagonalFloor = 1e-4

// Cholesky returns a lower-triangular L with L·Lᵀ ≈ a. It never fails: a
// non-positive diagonal residual is replaced by diagonalFloor before the
// square root.
func Cholesky(a mat.Symmetric) *mat.TriDense {
	n := a.SymmetricDim()
	l := mat.NewTriDense(n, mat.Lower, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a.At(i, j)
			for k := 0; k < j; k++ {
				sum -= l.At(i, k) * l.At(j, k)
			}
			if i == j {
				l.SetTri(i, i, math.Sqrt(math.Max(sum, diagonalFloor)))
				continue
			}
			l.SetTri(i, j, sum/l.At(j, j))
		}
	}
	return l
}

// Factor is the per-run correlation state. Shared read-only by every
// trajectory of the run.
type Factor struct {
	Matrix *mat.SymDense
	L      *mat.TriDense
}

// NewFactor builds the matrix and factor for tickers.
func NewFactor(tickers []string) *Factor {
	m := BuildMatrix(tickers)
	if m == nil {
		return &Factor{}
	}
	return &Factor{Matrix: m, L: Cholesky(m)}
}

// Size is the number of assets the factor covers.
func (f *Factor) Size() int {
	if f == nil || f.L == nil {
		return 0
	}
	n, _ := f.L.Dims()
	return n
}

// Correlate writes L·z into dst. dst and z must both have Size elements and
// must not alias.
func (f *Factor) Correlate(dst, z []float64) {
	n := f.Size()
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j <= i; j++ {
			s += f.L.At(i, j) * z[j]
		}
		dst[i] = s
	}
}
