// Package correlation builds the heuristic asset correlation matrix and its
// lower Cholesky factor.
package correlation

import (
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	broadMarket = map[string]bool{"SPY": true, "VTI": true, "VOO": true, "IVV": true}
	largeTech   = map[string]bool{
		"AAPL": true, "MSFT": true, "GOOGL": true, "AMZN": true,
		"META": true, "NVDA": true, "QQQ": true,
	}
)

const (
	bondTicker     = "BND"
	goldTicker     = "GLD"
	highBetaTicker = "TSLA"
)

// Pair returns the heuristic correlation between two distinct tickers.
// Buckets are checked in order; the first match wins.
func Pair(a, b string) float64 {
	a, b = strings.ToUpper(strings.TrimSpace(a)), strings.ToUpper(strings.TrimSpace(b))
	switch {
	case broadMarket[a] && broadMarket[b]:
		return 0.85
	case largeTech[a] && largeTech[b]:
		return 0.75
	case (a == bondTicker || b == bondTicker) && a != goldTicker && b != goldTicker:
		return -0.30
	case a == goldTicker || b == goldTicker:
		return 0.10
	case a == highBetaTicker || b == highBetaTicker:
		return 0.50
	default:
		return 0.60
	}
}

// BuildMatrix returns the symmetric n×n correlation matrix for tickers with a
// unit diagonal. It returns nil for an empty list.
func BuildMatrix(tickers []string) *mat.SymDense {
	n := len(tickers)
	if n == 0 {
		return nil
	}
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			m.SetSym(i, j, Pair(tickers[i], tickers[j]))
		}
	}
	return m
}
