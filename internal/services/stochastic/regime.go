package stochastic

import "PortfolioSim/internal/domain/models"

// RegimeChain is a two-state Markov chain over market regimes. It starts in
// bull.
type RegimeChain struct {
	params  models.RegimeParams
	current models.Regime
}

// NewRegimeChain returns a chain in bull governed by p.
func NewRegimeChain(p models.RegimeParams) *RegimeChain {
	return &RegimeChain{params: p, current: models.RegimeBull}
}

// Current returns the regime the chain is in.
func (c *RegimeChain) Current() models.Regime { return c.current }

// Parameters returns the drift and volatility of the current regime.
func (c *RegimeChain) Parameters() models.AssetParams {
	if c.current == models.RegimeBear {
		return c.params.Bear
	}
	return c.params.Bull
}

// Transition draws one uniform and moves the chain: bear when the draw falls
// below the probability of being in bear tomorrow, bull otherwise.
func (c *RegimeChain) Transition(src Source) models.Regime {
	pBear := c.params.BullToBear
	if c.current == models.RegimeBear {
		pBear = 1 - c.params.BearToBull
	}
	if src.Uniform() < pBear {
		c.current = models.RegimeBear
	} else {
		c.current = models.RegimeBull
	}
	return c.current
}

// Scale adjusts an asset's base parameters by the ratio of the current regime
// to the baseline.
func (c *RegimeChain) Scale(base models.AssetParams) models.AssetParams {
	rp := c.Parameters()
	return models.AssetParams{
		Mean: base.Mean * rp.Mean / c.params.Baseline.Mean,
		Vol:  base.Vol * rp.Vol / c.params.Baseline.Vol,
	}
}
