// Package path simulates single portfolio trajectories.
package path

import (
	"fmt"
	"math"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/internal/services/correlation"
	"PortfolioSim/internal/services/stochastic"
)

// minDailyReturn keeps the portfolio value strictly positive.
const minDailyReturn = -0.99

// Sampler is the variate source one trajectory draws from.
type Sampler interface {
	stochastic.Source
	StandardNormal() float64
	StudentT(df int) float64
}

// Config holds the read-only inputs shared by every trajectory of a run.
type Config struct {
	Settings     models.Settings
	Params       models.ModelParams
	Assets       []models.AssetParams
	Weights      []float64
	Factor       *correlation.Factor
	InitialValue float64
	Days         int
}

// Simulator runs trajectories for one run. It is safe for concurrent use:
// per-trajectory state lives in Simulate.
type Simulator struct {
	cfg Config
}

func NewSimulator(cfg Config) (*Simulator, error) {
	n := len(cfg.Assets)
	if n == 0 || len(cfg.Weights) != n {
		return nil, fmt.Errorf("path simulator: %d assets with %d weights", n, len(cfg.Weights))
	}
	if cfg.Settings.UseCorrelation && cfg.Factor.Size() != n {
		return nil, fmt.Errorf("path simulator: correlation factor covers %d of %d assets", cfg.Factor.Size(), n)
	}
	if cfg.Days <= 0 {
		return nil, fmt.Errorf("path simulator: days must be > 0")
	}
	return &Simulator{cfg: cfg}, nil
}

// Simulate produces one trajectory of Days+1 points. Panics, non-finite
// values and values that collapse to zero surface as models.ErrRuntimeFailure.
func (s *Simulator) Simulate(src Sampler) (p models.Path, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = models.Path{}
			err = fmt.Errorf("%w: panic: %v", models.ErrRuntimeFailure, r)
		}
	}()

	t := s.newTrajectory(src)
	value := s.cfg.InitialValue
	peak := value
	points := make([]models.PathPoint, 0, s.cfg.Days+1)
	points = append(points, models.PathPoint{Day: 0, Value: value, Regime: models.RegimeBull})
	var maxDD float64

	for day := 1; day <= s.cfg.Days; day++ {
		r := t.step()
		value *= 1 + r
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return models.Path{}, fmt.Errorf("%w: non-finite value on day %d", models.ErrRuntimeFailure, day)
		}
		if value <= 0 {
			return models.Path{}, fmt.Errorf("%w: value collapsed to %v on day %d", models.ErrRuntimeFailure, value, day)
		}
		if value > peak {
			peak = value
		}
		dd := (peak - value) / peak
		if dd > maxDD {
			maxDD = dd
		}
		points = append(points, models.PathPoint{
			Day:      day,
			Value:    value,
			Regime:   t.advanceRegime(),
			Drawdown: dd,
		})
	}
	return models.Path{Points: points, MaxDrawdown: maxDD}, nil
}
