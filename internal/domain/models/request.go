package models

import (
	"fmt"
	"math"
	"strings"
)

// SimulationRequest is what a caller submits to start a run.
type SimulationRequest struct {
	Portfolio    []Position `json:"portfolio" validate:"required,min=1,dive"`
	InitialValue float64    `json:"initialValue" validate:"gt=0"`
	Days         int        `json:"days" validate:"gt=0"`
	Simulations  int        `json:"simulations" validate:"gt=0"`
	Options      Options    `json:"options"`
}

// Limits bound the size of a single run. Zero means unbounded.
type Limits struct {
	MaxDays        int
	MaxSimulations int
}

// Validate checks the request and returns a *ConfigurationError on the first
// problem found.
func (r SimulationRequest) Validate(limits Limits) error {
	if len(r.Portfolio) == 0 {
		return NewConfigurationError("portfolio", "at least one position is required")
	}
	seen := make(map[string]struct{}, len(r.Portfolio))
	var total float64
	for i, p := range r.Portfolio {
		field := fmt.Sprintf("portfolio[%d]", i)
		ticker := NormalizeTicker(p.Ticker)
		if ticker == "" {
			return NewConfigurationError(field+".ticker", "ticker is required")
		}
		if _, dup := seen[ticker]; dup {
			return NewConfigurationError(field+".ticker", "duplicate ticker %s", ticker)
		}
		seen[ticker] = struct{}{}
		if math.IsNaN(p.Weight) || p.Weight < 0 || p.Weight > 1 {
			return NewConfigurationError(field+".weight", "weight must be in [0,1], got %v", p.Weight)
		}
		total += p.Weight
	}
	if total <= 0 {
		return NewConfigurationError("portfolio", "weights must sum to a positive value")
	}
	if math.IsNaN(r.InitialValue) || math.IsInf(r.InitialValue, 0) || r.InitialValue <= 0 {
		return NewConfigurationError("initialValue", "must be a finite number > 0")
	}
	if r.Days <= 0 {
		return NewConfigurationError("days", "must be > 0")
	}
	if limits.MaxDays > 0 && r.Days > limits.MaxDays {
		return NewConfigurationError("days", "must be <= %d", limits.MaxDays)
	}
	if r.Simulations <= 0 {
		return NewConfigurationError("simulations", "must be > 0")
	}
	if limits.MaxSimulations > 0 && r.Simulations > limits.MaxSimulations {
		return NewConfigurationError("simulations", "must be <= %d", limits.MaxSimulations)
	}
	for ticker, ap := range r.Options.AssetParams {
		field := "options.assetParams." + ticker
		if math.IsNaN(ap.Mean) || math.IsInf(ap.Mean, 0) {
			return NewConfigurationError(field+".mean", "must be finite")
		}
		if math.IsNaN(ap.Vol) || math.IsInf(ap.Vol, 0) || ap.Vol < 0 {
			return NewConfigurationError(field+".vol", "must be finite and >= 0")
		}
	}
	return nil
}

// Tickers returns the normalised portfolio tickers in order.
func (r SimulationRequest) Tickers() []string {
	out := make([]string, len(r.Portfolio))
	for i, p := range r.Portfolio {
		out[i] = NormalizeTicker(p.Ticker)
	}
	return out
}

// NormalizeTicker is the canonical form tickers are looked up and correlated
// under.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}
