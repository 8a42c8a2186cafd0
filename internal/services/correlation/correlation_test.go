package correlation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"PortfolioSim/internal/services/random"
)

func TestPairBuckets(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"SPY", "VTI", 0.85},
		{"voo", "ivv", 0.85},
		{"AAPL", "NVDA", 0.75},
		{"QQQ", "MSFT", 0.75},
		{"SPY", "BND", -0.30},
		{"BND", "TSLA", -0.30},
		{"BND", "GLD", 0.10},
		{"GLD", "SPY", 0.10},
		{"TSLA", "SPY", 0.50},
		{"SPY", "QQQ", 0.60},
		{"XYZ", "ABC", 0.60},
		{" spy", "VTI ", 0.85},
		{" bnd ", "SPY", -0.30},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Pair(tt.a, tt.b))
			assert.Equal(t, tt.want, Pair(tt.b, tt.a))
		})
	}
}

func TestBuildMatrixShape(t *testing.T) {
	tickers := []string{"SPY", "BND", "QQQ", "GLD", "TSLA", "AAPL"}
	m := BuildMatrix(tickers)
	require.NotNil(t, m)
	n := m.SymmetricDim()
	require.Equal(t, len(tickers), n)

	for i := 0; i < n; i++ {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := 0; j < n; j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.GreaterOrEqual(t, m.At(i, j), -1.0)
			assert.LessOrEqual(t, m.At(i, j), 1.0)
		}
	}
	assert.Nil(t, BuildMatrix(nil))
}

func TestCholeskyReconstructs(t *testing.T) {
	m := BuildMatrix([]string{"SPY", "BND", "QQQ", "GLD"})

	var ref mat.Cholesky
	require.True(t, ref.Factorize(m), "fixture must be positive definite")

	l := Cholesky(m)
	var prod mat.Dense
	prod.Mul(l, l.T())
	assert.True(t, mat.EqualApprox(&prod, m, 1e-4))
}

func TestCholeskyIndefiniteDoesNotFail(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		1, 0.9, -0.9,
		0.9, 1, 0.9,
		-0.9, 0.9, 1,
	})
	var ref mat.Cholesky
	require.False(t, ref.Factorize(m), "fixture must be indefinite")

	l := Cholesky(m)
	for i := 0; i < 3; i++ {
		assert.GreaterOrEqual(t, l.At(i, i), math.Sqrt(diagonalFloor))
		for j := 0; j <= i; j++ {
			v := l.At(i, j)
			assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		}
	}
}

func TestFactorCorrelate(t *testing.T) {
	f := NewFactor([]string{"SPY", "VOO"})
	require.Equal(t, 2, f.Size())

	dst := make([]float64, 2)
	f.Correlate(dst, []float64{1, 2})
	assert.InDelta(t, 1, dst[0], 1e-12)
	assert.InDelta(t, 0.85+2*math.Sqrt(1-0.85*0.85), dst[1], 1e-12)
}

func TestFactorInducesCorrelation(t *testing.T) {
	f := NewFactor([]string{"SPY", "BND"})
	g := random.NewSeeded(11, 0)

	n := 20000
	xs, ys := make([]float64, n), make([]float64, n)
	z, dst := make([]float64, 2), make([]float64, 2)
	for i := 0; i < n; i++ {
		z[0], z[1] = g.StandardNormal(), g.StandardNormal()
		f.Correlate(dst, z)
		xs[i], ys[i] = dst[0], dst[1]
	}
	assert.InDelta(t, -0.30, stat.Correlation(xs, ys, nil), 0.03)
}

func TestEmptyFactor(t *testing.T) {
	f := NewFactor(nil)
	assert.Equal(t, 0, f.Size())
	var nilFactor *Factor
	assert.Equal(t, 0, nilFactor.Size())
}
