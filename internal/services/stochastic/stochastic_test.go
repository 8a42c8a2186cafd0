package stochastic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/internal/services/random"
)

// fixedSource returns the same uniform every time and records normal calls.
type fixedSource struct {
	u       float64
	normals int
}

func (f *fixedSource) Uniform() float64 { return f.u }

func (f *fixedSource) Normal(mean, _ float64) float64 {
	f.normals++
	return mean
}

func TestGARCHVarianceStaysPositive(t *testing.T) {
	g := NewGARCH(models.DefaultModelParams().GARCH)
	for i := 0; i < 10000; i++ {
		sd := g.Update(0)
		require.Greater(t, g.Variance(), 0.0)
		require.Greater(t, sd, 0.0)
	}
	// Converges to omega / (1 - beta) under zero shocks.
	assert.InDelta(t, 0.000001/0.15, g.Variance(), 1e-9)
}

func TestGARCHUpdate(t *testing.T) {
	g := NewGARCH(models.GARCHParams{Omega: 1e-6, Alpha: 0.1, Beta: 0.85, InitialVariance: 1e-4})
	sd := g.Update(0.02)
	want := 1e-6 + 0.1*0.0004 + 0.85*1e-4
	assert.InDelta(t, want, g.Variance(), 1e-15)
	assert.InDelta(t, math.Sqrt(want), sd, 1e-12)
}

func TestGARCHFloorsDegenerateParameters(t *testing.T) {
	g := NewGARCH(models.GARCHParams{})
	assert.Equal(t, minVariance, g.Variance())
	g.Update(0)
	assert.Equal(t, minVariance, g.Variance())
}

func TestRegimeChainStartsBull(t *testing.T) {
	p := models.DefaultModelParams().Regime
	c := NewRegimeChain(p)
	assert.Equal(t, models.RegimeBull, c.Current())
	assert.Equal(t, p.Bull, c.Parameters())
}

func TestRegimeTransitionThresholds(t *testing.T) {
	p := models.DefaultModelParams().Regime
	c := NewRegimeChain(p)

	assert.Equal(t, models.RegimeBull, c.Transition(&fixedSource{u: 0.05}))
	assert.Equal(t, models.RegimeBear, c.Transition(&fixedSource{u: 0.049}))
	assert.Equal(t, p.Bear, c.Parameters())

	// From bear, stay while u < 0.9.
	assert.Equal(t, models.RegimeBear, c.Transition(&fixedSource{u: 0.89}))
	assert.Equal(t, models.RegimeBull, c.Transition(&fixedSource{u: 0.9}))
}

func TestRegimeStationaryBearShare(t *testing.T) {
	c := NewRegimeChain(models.DefaultModelParams().Regime)
	g := random.NewSeeded(5, 5)

	steps, bear := 200000, 0
	for i := 0; i < steps; i++ {
		if c.Transition(g) == models.RegimeBear {
			bear++
		}
	}
	assert.InDelta(t, 1.0/3.0, float64(bear)/float64(steps), 0.02)
}

func TestRegimeScale(t *testing.T) {
	p := models.DefaultModelParams().Regime
	c := NewRegimeChain(p)
	base := models.AssetParams{Mean: 0.0006, Vol: 0.03}

	bull := c.Scale(base)
	assert.InDelta(t, 0.0006*0.0008/0.0003, bull.Mean, 1e-15)
	assert.InDelta(t, 0.03*0.012/0.015, bull.Vol, 1e-15)

	c.Transition(&fixedSource{u: 0})
	bear := c.Scale(base)
	assert.Less(t, bear.Mean, 0.0)
	assert.Greater(t, bear.Vol, bull.Vol)
}

func TestJumpDiffusion(t *testing.T) {
	j := NewJumpDiffusion(models.DefaultModelParams().Jump)

	miss := &fixedSource{u: 0.5}
	assert.Equal(t, 0.0, j.Draw(miss))
	assert.Zero(t, miss.normals)

	hit := &fixedSource{u: 0.001}
	assert.Equal(t, -0.02, j.Draw(hit))
	assert.Equal(t, 1, hit.normals)
}

func TestJumpFrequency(t *testing.T) {
	j := NewJumpDiffusion(models.DefaultModelParams().Jump)
	g := random.NewSeeded(8, 0)

	n, jumps := 200000, 0
	for i := 0; i < n; i++ {
		if j.Draw(g) != 0 {
			jumps++
		}
	}
	assert.InDelta(t, 0.01, float64(jumps)/float64(n), 0.002)
}

func TestMeanReversionPullsTowardMean(t *testing.T) {
	m := NewMeanReversion(0.001, 0.1)
	assert.Equal(t, 0.001, m.Current())

	// fixedSource.Normal returns the mean, so the noise term is zero.
	src := &fixedSource{}
	m.current = 0.011
	got := m.Step(0.5, src)
	assert.InDelta(t, 0.011+0.1*(0.001-0.011), got, 1e-15)
	assert.Equal(t, 1, src.normals)
}
