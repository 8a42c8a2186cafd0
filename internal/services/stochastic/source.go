// Package stochastic holds the per-day return adjustment models: GARCH(1,1)
// volatility clustering, bull/bear regime switching, jump diffusion and mean
// reversion. State is owned by a single trajectory and never shared.
package stochastic

// Source is the subset of random.Generator the models draw from.
type Source interface {
	Uniform() float64
	Normal(mean, stdDev float64) float64
}
