package usecase

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/pkg/logger"
	"PortfolioSim/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func newTestRunner(opts ...RunnerOption) *SimulationRunner {
	return NewSimulationRunner(logger.Nop(), metrics.Nop{}, opts...)
}

func spyBond(days, sims int) models.SimulationRequest {
	return models.SimulationRequest{
		Portfolio:    []models.Position{{Ticker: "SPY", Weight: 0.6}, {Ticker: "BND", Weight: 0.4}},
		InitialValue: 10000,
		Days:         days,
		Simulations:  sims,
	}
}

func finalValues(res *models.Result) []float64 {
	out := make([]float64, len(res.Paths))
	for i, p := range res.Paths {
		out[i] = p.FinalValue()
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	r := newTestRunner(WithWorkers(4), WithSeed(2024))

	res, err := r.Run(context.Background(), "e2e", spyBond(252, 1000), nil)
	require.NoError(t, err)
	require.Len(t, res.Paths, 1000)
	assert.Equal(t, models.Stats{Simulations: 1000, Days: 252}, res.Stats)
	assert.Equal(t, "e2e", res.RunID)

	for _, p := range res.Paths {
		require.Len(t, p.Points, 253)
		for d, pt := range p.Points {
			require.Equal(t, d, pt.Day)
			require.False(t, math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0))
			require.False(t, math.IsNaN(pt.Drawdown))
		}
		require.False(t, math.IsNaN(p.MaxDrawdown))
	}

	drift := 0.6*0.0004 + 0.4*0.0001
	want := 10000 * math.Pow(1+drift, 252)
	assert.InEpsilon(t, want, stat.Mean(finalValues(res), nil), 0.1)
}

func TestRunPlainModelCentresOnDrift(t *testing.T) {
	off := models.Bool(false)
	req := spyBond(252, 1000)
	req.Options = models.Options{
		UseFatTails: off, UseGARCH: off, UseRegimeSwitching: off, UseJumpDiffusion: off,
	}
	res, err := newTestRunner(WithSeed(7)).Run(context.Background(), "plain", req, nil)
	require.NoError(t, err)

	drift := 0.6*0.0004 + 0.4*0.0001
	want := 10000 * math.Pow(1+drift, 252)
	assert.InEpsilon(t, want, stat.Mean(finalValues(res), nil), 0.03)
}

func TestRunSingleSimulation(t *testing.T) {
	var got []int
	res, err := newTestRunner().Run(context.Background(), "one", spyBond(10, 1), func(p int) { got = append(got, p) })
	require.NoError(t, err)
	assert.Len(t, res.Paths, 1)
	assert.Equal(t, []int{100}, got)
}

func TestRunProgressIsMonotonic(t *testing.T) {
	for _, n := range []int{7, 20, 39, 40, 101, 500} {
		var mu sync.Mutex
		var got []int
		_, err := newTestRunner(WithWorkers(8)).Run(context.Background(), "p", spyBond(5, n), func(p int) {
			mu.Lock()
			got = append(got, p)
			mu.Unlock()
		})
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.LessOrEqual(t, len(got), 40)
		for i, p := range got {
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
			if i > 0 {
				assert.Greater(t, p, got[i-1], "n=%d", n)
			}
		}
	}
}

func TestRunSeededIsReproducible(t *testing.T) {
	req := spyBond(30, 50)
	a, err := newTestRunner(WithWorkers(3)).Run(context.Background(), "a", withSeed(req, 99), nil)
	require.NoError(t, err)
	b, err := newTestRunner(WithWorkers(7)).Run(context.Background(), "b", withSeed(req, 99), nil)
	require.NoError(t, err)
	assert.Equal(t, finalValues(a), finalValues(b))
}

func withSeed(req models.SimulationRequest, seed uint64) models.SimulationRequest {
	req.Options.Seed = &seed
	return req
}

func TestRunConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SimulationRequest)
	}{
		{"empty portfolio", func(r *models.SimulationRequest) { r.Portfolio = nil }},
		{"zero weights", func(r *models.SimulationRequest) {
			r.Portfolio = []models.Position{{Ticker: "SPY", Weight: 0}}
		}},
		{"weight above one", func(r *models.SimulationRequest) { r.Portfolio[0].Weight = 1.5 }},
		{"duplicate ticker", func(r *models.SimulationRequest) { r.Portfolio[1].Ticker = "spy" }},
		{"zero days", func(r *models.SimulationRequest) { r.Days = 0 }},
		{"too many simulations", func(r *models.SimulationRequest) { r.Simulations = 10001 }},
		{"negative initial", func(r *models.SimulationRequest) { r.InitialValue = -1 }},
		{"negative vol override", func(r *models.SimulationRequest) {
			r.Options.AssetParams = map[string]models.AssetParams{"SPY": {Mean: 0, Vol: -1}}
		}},
	}
	r := newTestRunner(WithLimits(models.Limits{MaxSimulations: 10000}))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := spyBond(10, 10)
			tt.mutate(&req)
			res, err := r.Run(context.Background(), "bad", req, nil)
			assert.Nil(t, res)
			assert.True(t, models.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestRunInvalidModelParams(t *testing.T) {
	p := models.DefaultModelParams()
	p.StudentTDF = 0
	_, err := newTestRunner(WithModelParams(p)).Run(context.Background(), "m", spyBond(5, 5), nil)
	assert.True(t, models.IsConfigurationError(err))
}

func TestRunNormalisesPaddedTickers(t *testing.T) {
	off := models.Bool(false)
	req := models.SimulationRequest{
		Portfolio:    []models.Position{{Ticker: " spy ", Weight: 1}},
		InitialValue: 10000,
		Days:         5,
		Simulations:  1,
		Options: models.Options{
			UseGARCH: off, UseRegimeSwitching: off, UseJumpDiffusion: off,
			AssetParams: map[string]models.AssetParams{"SPY": {Mean: 0.5, Vol: 0}},
		},
	}
	res, err := newTestRunner().Run(context.Background(), "padded", req, nil)
	require.NoError(t, err)
	assert.InEpsilon(t, 10000*math.Pow(1.5, 5), res.Paths[0].FinalValue(), 1e-9)
}

func TestRunCollapsedValueIsRuntimeFailure(t *testing.T) {
	off := models.Bool(false)
	req := models.SimulationRequest{
		Portfolio:    []models.Position{{Ticker: "X", Weight: 1}},
		InitialValue: 10000,
		Days:         2000,
		Simulations:  2,
		Options: models.Options{
			UseCorrelation: off, UseFatTails: off, UseGARCH: off,
			UseRegimeSwitching: off, UseJumpDiffusion: off,
			AssetParams: map[string]models.AssetParams{"X": {Mean: -5, Vol: 0}},
		},
	}
	res, err := newTestRunner().Run(context.Background(), "collapse", req, nil)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, models.ErrRuntimeFailure), "got %v", err)
}

func TestRunOverflowIsRuntimeFailure(t *testing.T) {
	off := models.Bool(false)
	req := spyBond(50, 4)
	req.Options = models.Options{
		UseGARCH: off, UseRegimeSwitching: off, UseFatTails: off,
		AssetParams: map[string]models.AssetParams{"SPY": {Mean: 1e308, Vol: 0}},
	}
	_, err := newTestRunner().Run(context.Background(), "boom", req, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRuntimeFailure))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRunner().Run(ctx, "c", spyBond(10, 100), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
