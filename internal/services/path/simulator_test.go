package path

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/internal/services/correlation"
	"PortfolioSim/internal/services/random"
)

func testConfig(opts models.Options) Config {
	tickers := []string{"SPY", "BND"}
	table := models.DefaultAssetParams()
	return Config{
		Settings:     opts.Resolve(),
		Params:       models.DefaultModelParams(),
		Assets:       []models.AssetParams{table.Lookup("SPY"), table.Lookup("BND")},
		Weights:      []float64{0.6, 0.4},
		Factor:       correlation.NewFactor(tickers),
		InitialValue: 10000,
		Days:         60,
	}
}

func TestSimulateShape(t *testing.T) {
	sim, err := NewSimulator(testConfig(models.Options{UseMeanReversion: models.Bool(true)}))
	require.NoError(t, err)

	p, err := sim.Simulate(random.NewSeeded(1, 0))
	require.NoError(t, err)
	require.Len(t, p.Points, 61)

	assert.Equal(t, 10000.0, p.Points[0].Value)
	assert.Equal(t, 0.0, p.Points[0].Drawdown)
	for i, pt := range p.Points {
		assert.Equal(t, i, pt.Day)
		assert.Contains(t, []models.Regime{models.RegimeBull, models.RegimeBear}, pt.Regime)
		assert.False(t, math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0))
		assert.Greater(t, pt.Value, 0.0)
	}
}

func TestSimulateDrawdown(t *testing.T) {
	sim, err := NewSimulator(testConfig(models.Options{}))
	require.NoError(t, err)

	for seed := uint64(0); seed < 20; seed++ {
		p, err := sim.Simulate(random.NewSeeded(seed, 0))
		require.NoError(t, err)

		peak, maxDD := p.Points[0].Value, 0.0
		for _, pt := range p.Points {
			peak = math.Max(peak, pt.Value)
			want := (peak - pt.Value) / peak
			assert.InDelta(t, want, pt.Drawdown, 1e-12)
			assert.GreaterOrEqual(t, pt.Drawdown, 0.0)
			assert.Less(t, pt.Drawdown, 1.0)
			maxDD = math.Max(maxDD, pt.Drawdown)
		}
		assert.Equal(t, maxDD, p.MaxDrawdown)
	}
}

func TestRecessionScalesAssetReturns(t *testing.T) {
	base := models.Options{UseMeanReversion: models.Bool(true)}
	stressed := base
	stressed.Scenarios = models.Scenarios{Recession: true}

	simA, err := NewSimulator(testConfig(base))
	require.NoError(t, err)
	simB, err := NewSimulator(testConfig(stressed))
	require.NoError(t, err)

	a := simA.newTrajectory(random.NewSeeded(7, 3))
	b := simB.newTrajectory(random.NewSeeded(7, 3))
	for day := 0; day < 30; day++ {
		a.step()
		b.step()
		for i := range a.returns {
			assert.InDelta(t, a.returns[i]*0.7, b.returns[i], 1e-15)
		}
		assert.Equal(t, a.advanceRegime(), b.advanceRegime())
	}
}

func TestRegimeDisabledRecordsBull(t *testing.T) {
	sim, err := NewSimulator(testConfig(models.Options{UseRegimeSwitching: models.Bool(false)}))
	require.NoError(t, err)

	p, err := sim.Simulate(random.NewSeeded(2, 0))
	require.NoError(t, err)
	for _, pt := range p.Points {
		assert.Equal(t, models.RegimeBull, pt.Regime)
	}
}

func TestAllModelsDisabled(t *testing.T) {
	off := models.Bool(false)
	cfg := testConfig(models.Options{
		UseCorrelation: off, UseFatTails: off, UseGARCH: off,
		UseRegimeSwitching: off, UseJumpDiffusion: off,
	})
	cfg.Factor = nil
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	p, err := sim.Simulate(random.NewSeeded(4, 0))
	require.NoError(t, err)
	assert.Len(t, p.Points, 61)
}

func TestNonFiniteValueIsRuntimeFailure(t *testing.T) {
	cfg := testConfig(models.Options{})
	cfg.InitialValue = math.Inf(1)
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	_, err = sim.Simulate(random.NewSeeded(1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRuntimeFailure))
}

func TestCollapsedValueIsRuntimeFailure(t *testing.T) {
	off := models.Bool(false)
	cfg := testConfig(models.Options{
		UseCorrelation: off, UseFatTails: off, UseGARCH: off,
		UseRegimeSwitching: off, UseJumpDiffusion: off,
	})
	cfg.Assets = []models.AssetParams{{Mean: -5, Vol: 0}}
	cfg.Weights = []float64{1}
	cfg.Factor = nil
	cfg.Days = 2000
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)

	_, err = sim.Simulate(random.NewSeeded(1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRuntimeFailure))
}

type panickingSampler struct{ *random.Generator }

func (panickingSampler) StudentT(int) float64 { panic("boom") }

func TestPanicIsRuntimeFailure(t *testing.T) {
	sim, err := NewSimulator(testConfig(models.Options{}))
	require.NoError(t, err)

	p, err := sim.Simulate(panickingSampler{random.NewSeeded(1, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRuntimeFailure))
	assert.Contains(t, err.Error(), "boom")
	assert.Empty(t, p.Points)
}

func TestNewSimulatorRejectsMismatchedInputs(t *testing.T) {
	cfg := testConfig(models.Options{})
	cfg.Weights = cfg.Weights[:1]
	_, err := NewSimulator(cfg)
	assert.Error(t, err)

	cfg = testConfig(models.Options{})
	cfg.Factor = correlation.NewFactor([]string{"SPY"})
	_, err = NewSimulator(cfg)
	assert.Error(t, err)

	cfg = testConfig(models.Options{})
	cfg.Days = 0
	_, err = NewSimulator(cfg)
	assert.Error(t, err)
}
