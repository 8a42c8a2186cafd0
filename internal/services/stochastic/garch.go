package stochastic

import (
	"math"

	"PortfolioSim/internal/domain/models"
)

// minVariance keeps the conditional variance strictly positive.
const minVariance = 1e-12

// GARCH is a GARCH(1,1) conditional variance tracker for one asset.
type GARCH struct {
	omega, alpha, beta float64
	variance           float64
}

// NewGARCH starts a tracker at p.InitialVariance, floored to stay positive.
func NewGARCH(p models.GARCHParams) *GARCH {
	v := p.InitialVariance
	if v < minVariance {
		v = minVariance
	}
	return &GARCH{omega: p.Omega, alpha: p.Alpha, beta: p.Beta, variance: v}
}

// Update folds today's shock into the variance and returns the new
// conditional standard deviation.
func (g *GARCH) Update(shock float64) float64 {
	v := g.omega + g.alpha*shock*shock + g.beta*g.variance
	if v < minVariance || math.IsNaN(v) {
		v = minVariance
	}
	g.variance = v
	return math.Sqrt(v)
}

// Variance returns the current conditional variance.
func (g *GARCH) Variance() float64 { return g.variance }
