package main

import (
	"fmt"
	"strconv"
	"strings"

	"PortfolioSim/internal/domain/models"

	"github.com/spf13/cobra"
)

// requestFlags are the run parameters shared by run and submit.
type requestFlags struct {
	portfolio   string
	initial     float64
	days        int
	simulations int
	seed        int64

	noCorrelation   bool
	noFatTails      bool
	noGARCH         bool
	noRegime        bool
	noJumps         bool
	meanReversion   bool
	recession       bool
	volatilitySpike bool
	bullMarket      bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.portfolio, "portfolio", "SPY=0.6,BND=0.4", "comma separated TICKER=weight pairs")
	fs.Float64Var(&f.initial, "initial", 10000, "initial portfolio value")
	fs.IntVar(&f.days, "days", 252, "trading days to simulate")
	fs.IntVar(&f.simulations, "simulations", 1000, "number of trajectories")
	fs.Int64Var(&f.seed, "seed", -1, "seed for a reproducible run (negative for random)")

	fs.BoolVar(&f.noCorrelation, "no-correlation", false, "draw assets independently")
	fs.BoolVar(&f.noFatTails, "no-fat-tails", false, "use normal instead of Student-t shocks")
	fs.BoolVar(&f.noGARCH, "no-garch", false, "disable volatility clustering")
	fs.BoolVar(&f.noRegime, "no-regime", false, "disable bull/bear regime switching")
	fs.BoolVar(&f.noJumps, "no-jumps", false, "disable jump diffusion")
	fs.BoolVar(&f.meanReversion, "mean-reversion", false, "enable mean-reverting drift")
	fs.BoolVar(&f.recession, "recession", false, "apply the recession scenario")
	fs.BoolVar(&f.volatilitySpike, "volatility-spike", false, "apply the volatility spike scenario")
	fs.BoolVar(&f.bullMarket, "bull-market", false, "apply the bull market scenario")
}

func (f *requestFlags) request() (models.SimulationRequest, error) {
	positions, err := parsePortfolio(f.portfolio)
	if err != nil {
		return models.SimulationRequest{}, err
	}
	req := models.SimulationRequest{
		Portfolio:    positions,
		InitialValue: f.initial,
		Days:         f.days,
		Simulations:  f.simulations,
		Options: models.Options{
			UseCorrelation:     models.Bool(!f.noCorrelation),
			UseFatTails:        models.Bool(!f.noFatTails),
			UseGARCH:           models.Bool(!f.noGARCH),
			UseRegimeSwitching: models.Bool(!f.noRegime),
			UseJumpDiffusion:   models.Bool(!f.noJumps),
			UseMeanReversion:   models.Bool(f.meanReversion),
			Scenarios: models.Scenarios{
				Recession:       f.recession,
				VolatilitySpike: f.volatilitySpike,
				BullMarket:      f.bullMarket,
			},
		},
	}
	if f.seed >= 0 {
		seed := uint64(f.seed)
		req.Options.Seed = &seed
	}
	return req, nil
}

// parsePortfolio reads "SPY=0.6,BND=0.4".
func parsePortfolio(s string) ([]models.Position, error) {
	var out []models.Position
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ticker, weight, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("portfolio entry %q: want TICKER=weight", part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, fmt.Errorf("portfolio entry %q: %w", part, err)
		}
		out = append(out, models.Position{Ticker: strings.ToUpper(strings.TrimSpace(ticker)), Weight: w})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("portfolio is empty")
	}
	return out, nil
}
