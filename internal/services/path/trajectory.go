package path

import (
	"PortfolioSim/internal/domain/models"
	"PortfolioSim/internal/services/stochastic"
)

// trajectory is the mutable model state of a single path.
type trajectory struct {
	cfg *Config
	src Sampler

	garch  []*stochastic.GARCH
	mr     []*stochastic.MeanReversion
	regime *stochastic.RegimeChain
	jump   stochastic.JumpDiffusion

	raw     []float64
	shocks  []float64
	returns []float64
}

func (s *Simulator) newTrajectory(src Sampler) *trajectory {
	n := len(s.cfg.Assets)
	t := &trajectory{
		cfg:     &s.cfg,
		src:     src,
		raw:     make([]float64, n),
		shocks:  make([]float64, n),
		returns: make([]float64, n),
	}
	set := s.cfg.Settings
	if set.UseGARCH {
		t.garch = make([]*stochastic.GARCH, n)
		for i := range t.garch {
			t.garch[i] = stochastic.NewGARCH(s.cfg.Params.GARCH)
		}
	}
	if set.UseMeanReversion {
		t.mr = make([]*stochastic.MeanReversion, n)
		for i, a := range s.cfg.Assets {
			t.mr[i] = stochastic.NewMeanReversion(a.Mean, s.cfg.Params.MeanReversion.Speed)
		}
	}
	if set.UseRegimeSwitching {
		t.regime = stochastic.NewRegimeChain(s.cfg.Params.Regime)
	}
	if set.UseJumpDiffusion {
		t.jump = stochastic.NewJumpDiffusion(s.cfg.Params.Jump)
	}
	return t
}

// step derives every asset return for one day into t.returns and returns the
// floored weighted portfolio return. The regime is read, not advanced.
func (t *trajectory) step() float64 {
	set := t.cfg.Settings
	params := t.cfg.Params

	for i := range t.raw {
		if set.UseFatTails {
			t.raw[i] = t.src.StudentT(params.StudentTDF)
		} else {
			t.raw[i] = t.src.StandardNormal()
		}
	}
	shocks := t.raw
	if set.UseCorrelation {
		t.cfg.Factor.Correlate(t.shocks, t.raw)
		shocks = t.shocks
	}

	var portfolio float64
	for i, base := range t.cfg.Assets {
		mean, vol := base.Mean, base.Vol
		if t.mr != nil {
			mean = t.mr[i].Step(params.MeanReversion.DiffusionScale*vol, t.src)
		}
		if t.regime != nil {
			scaled := t.regime.Scale(models.AssetParams{Mean: mean, Vol: vol})
			mean, vol = scaled.Mean, scaled.Vol
		}
		z := shocks[i]
		if t.garch != nil {
			vol = t.garch[i].Update(z*vol + mean)
		}
		r := z*vol + mean
		if set.UseJumpDiffusion {
			r += t.jump.Draw(t.src)
		}
		r = t.applyScenarios(r)
		t.returns[i] = r
		portfolio += t.cfg.Weights[i] * r
	}
	if portfolio < minDailyReturn {
		portfolio = minDailyReturn
	}
	return portfolio
}

func (t *trajectory) applyScenarios(r float64) float64 {
	sc := t.cfg.Settings.Scenarios
	p := t.cfg.Params.Scenario
	if sc.Recession {
		r *= p.RecessionFactor
	}
	if sc.VolatilitySpike {
		r *= 1 + t.src.Normal(0, p.SpikeStdDev)
	}
	if sc.BullMarket {
		r *= p.BullMarketFactor
	}
	return r
}

// advanceRegime moves the chain one day and returns the regime to record.
func (t *trajectory) advanceRegime() models.Regime {
	if t.regime == nil {
		return models.RegimeBull
	}
	return t.regime.Transition(t.src)
}
