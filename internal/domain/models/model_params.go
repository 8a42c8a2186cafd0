package models

import (
	"fmt"
	"math"
)

// ModelParams holds the fixed parameters of the stochastic adjustment models.
// They are process-wide and loaded from the `model` config section.
type ModelParams struct {
	StudentTDF    int                 `yaml:"student_t_df" json:"studentTDF"`
	GARCH         GARCHParams         `yaml:"garch" json:"garch"`
	Regime        RegimeParams        `yaml:"regime" json:"regime"`
	Jump          JumpParams          `yaml:"jump" json:"jump"`
	MeanReversion MeanReversionParams `yaml:"mean_reversion" json:"meanReversion"`
	Scenario      ScenarioParams      `yaml:"scenario" json:"scenario"`
}

type GARCHParams struct {
	Omega           float64 `yaml:"omega" json:"omega"`
	Alpha           float64 `yaml:"alpha" json:"alpha"`
	Beta            float64 `yaml:"beta" json:"beta"`
	InitialVariance float64 `yaml:"initial_variance" json:"initialVariance"`
}

// RegimeParams describes the two-state chain. Per-regime parameters scale an
// asset's own drift and volatility by their ratio to Baseline.
type RegimeParams struct {
	BullToBear float64     `yaml:"bull_to_bear" json:"bullToBear"`
	BearToBull float64     `yaml:"bear_to_bull" json:"bearToBull"`
	Bull       AssetParams `yaml:"bull" json:"bull"`
	Bear       AssetParams `yaml:"bear" json:"bear"`
	Baseline   AssetParams `yaml:"baseline" json:"baseline"`
}

type JumpParams struct {
	Intensity float64 `yaml:"intensity" json:"intensity"` // daily probability
	Mean      float64 `yaml:"mean" json:"mean"`
	Vol       float64 `yaml:"vol" json:"vol"`
}

type MeanReversionParams struct {
	Speed float64 `yaml:"speed" json:"speed"`
	// DiffusionScale multiplies the asset volatility to get the noise term.
	DiffusionScale float64 `yaml:"diffusion_scale" json:"diffusionScale"`
}

type ScenarioParams struct {
	RecessionFactor  float64 `yaml:"recession_factor" json:"recessionFactor"`
	BullMarketFactor float64 `yaml:"bull_market_factor" json:"bullMarketFactor"`
	SpikeStdDev      float64 `yaml:"spike_std_dev" json:"spikeStdDev"`
}

// DefaultModelParams returns the reference parameter set.
func DefaultModelParams() ModelParams {
	return ModelParams{
		StudentTDF: 5,
		GARCH: GARCHParams{
			Omega:           0.000001,
			Alpha:           0.10,
			Beta:            0.85,
			InitialVariance: 0.0001,
		},
		Regime: RegimeParams{
			BullToBear: 0.05,
			BearToBull: 0.10,
			Bull:       AssetParams{Mean: 0.0008, Vol: 0.012},
			Bear:       AssetParams{Mean: -0.0005, Vol: 0.025},
			Baseline:   AssetParams{Mean: 0.0003, Vol: 0.015},
		},
		Jump: JumpParams{
			Intensity: 0.01,
			Mean:      -0.02,
			Vol:       0.04,
		},
		MeanReversion: MeanReversionParams{
			Speed:          0.1,
			DiffusionScale: 0.1,
		},
		Scenario: ScenarioParams{
			RecessionFactor:  0.7,
			BullMarketFactor: 1.3,
			SpikeStdDev:      0.5,
		},
	}
}

// Validate rejects parameter sets the models cannot run with.
func (p ModelParams) Validate() error {
	if p.StudentTDF < 1 {
		return fmt.Errorf("student_t_df must be >= 1, got %d", p.StudentTDF)
	}
	if p.GARCH.Omega <= 0 || p.GARCH.Alpha < 0 || p.GARCH.Beta < 0 {
		return fmt.Errorf("garch requires omega > 0 and non-negative alpha, beta")
	}
	if p.GARCH.InitialVariance <= 0 {
		return fmt.Errorf("garch.initial_variance must be > 0")
	}
	if !isProbability(p.Regime.BullToBear) || !isProbability(p.Regime.BearToBull) {
		return fmt.Errorf("regime transition probabilities must be in [0,1]")
	}
	if p.Regime.Baseline.Mean == 0 || p.Regime.Baseline.Vol == 0 {
		return fmt.Errorf("regime baseline mean and vol must be non-zero")
	}
	if !isProbability(p.Jump.Intensity) || p.Jump.Vol < 0 {
		return fmt.Errorf("jump intensity must be in [0,1] and vol >= 0")
	}
	if p.MeanReversion.Speed < 0 || p.MeanReversion.DiffusionScale < 0 {
		return fmt.Errorf("mean_reversion speed and diffusion_scale must be >= 0")
	}
	if p.Scenario.SpikeStdDev < 0 {
		return fmt.Errorf("scenario.spike_std_dev must be >= 0")
	}
	return nil
}

func isProbability(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
