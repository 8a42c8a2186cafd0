package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"PortfolioSim/internal/domain/models"
	drepo "PortfolioSim/internal/domain/repository"
	"PortfolioSim/internal/services/correlation"
	"PortfolioSim/internal/services/path"
	"PortfolioSim/internal/services/random"
	"PortfolioSim/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// progressSteps is the target number of progress notifications per run.
const progressSteps = 20

// SimulationRunner validates a request and runs its trajectory ensemble on a
// bounded worker pool.
type SimulationRunner struct {
	logger  *logger.Logger
	metrics drepo.Metrics
	params  models.ModelParams
	assets  models.AssetTable
	limits  models.Limits
	workers int
	seed    *uint64
}

// RunnerOption configures SimulationRunner.
type RunnerOption func(*SimulationRunner)

// WithWorkers bounds the number of trajectories simulated concurrently.
func WithWorkers(n int) RunnerOption {
	return func(r *SimulationRunner) {
		if n > 0 {
			r.workers = n
		}
	}
}

func WithModelParams(p models.ModelParams) RunnerOption {
	return func(r *SimulationRunner) { r.params = p }
}

// WithAssetTable replaces the built-in default parameter table.
func WithAssetTable(t models.AssetTable) RunnerOption {
	return func(r *SimulationRunner) { r.assets = t }
}

func WithLimits(l models.Limits) RunnerOption {
	return func(r *SimulationRunner) { r.limits = l }
}

// WithSeed makes every run deterministic unless the request carries its own
// seed.
func WithSeed(seed uint64) RunnerOption {
	return func(r *SimulationRunner) { r.seed = &seed }
}

func NewSimulationRunner(lgr *logger.Logger, metrics drepo.Metrics, opts ...RunnerOption) *SimulationRunner {
	r := &SimulationRunner{
		logger:  lgr,
		metrics: metrics,
		params:  models.DefaultModelParams(),
		assets:  models.DefaultAssetParams(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limits returns the size bounds requests are validated against.
func (r *SimulationRunner) Limits() models.Limits { return r.limits }

// Run simulates the ensemble for req. onProgress, when not nil, is called from
// a single goroutine with non-decreasing percentages in [0,100]. On failure no
// partial result is returned.
func (r *SimulationRunner) Run(ctx context.Context, runID string, req models.SimulationRequest, onProgress func(int)) (*models.Result, error) {
	start := time.Now()
	lgr := r.logger.With(logger.String("run_id", runID))

	r.metrics.RunStarted()
	res, err := r.run(ctx, runID, req, onProgress)
	elapsed := time.Since(start)

	if err != nil {
		kind := errorKind(err)
		r.metrics.RecordError(kind)
		r.metrics.RunFinished("error", elapsed)
		if kind == "configuration" {
			lgr.Warn("simulation rejected", logger.Error(err))
		} else {
			lgr.Error("simulation failed", logger.String("kind", kind), logger.Error(err))
		}
		return nil, err
	}

	r.metrics.TrajectoriesCompleted(len(res.Paths))
	r.metrics.RunFinished("complete", elapsed)
	lgr.Info("simulation complete",
		logger.Int("simulations", res.Stats.Simulations),
		logger.Int("days", res.Stats.Days),
		logger.Duration("elapsed_ms", elapsed))
	return res, nil
}

func (r *SimulationRunner) run(ctx context.Context, runID string, req models.SimulationRequest, onProgress func(int)) (*models.Result, error) {
	if err := req.Validate(r.limits); err != nil {
		return nil, err
	}
	if err := r.params.Validate(); err != nil {
		return nil, models.NewConfigurationError("model", "%v", err)
	}

	sim, err := r.simulator(req)
	if err != nil {
		return nil, fmt.Errorf("%w: build simulator: %v", models.ErrRuntimeFailure, err)
	}

	seed := req.Options.Seed
	if seed == nil {
		seed = r.seed
	}

	r.logger.Debug("simulation started",
		logger.String("run_id", runID),
		logger.Int("assets", len(req.Portfolio)),
		logger.Int("simulations", req.Simulations),
		logger.Int("days", req.Days),
		logger.Int("workers", r.workers),
		logger.Bool("seeded", seed != nil))

	n := req.Simulations
	paths := make([]models.Path, n)
	done := make(chan struct{}, r.workers)
	collected := make(chan struct{})

	go func() {
		defer close(collected)
		reportProgress(done, n, onProgress)
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			var gen *random.Generator
			if seed != nil {
				gen = random.NewSeeded(*seed, uint64(i))
			} else {
				gen = random.New()
			}
			p, err := sim.Simulate(gen)
			if err != nil {
				return fmt.Errorf("trajectory %d: %w", i, err)
			}
			paths[i] = p
			done <- struct{}{}
			return nil
		})
	}
	err = g.Wait()
	close(done)
	<-collected

	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}

	return &models.Result{
		RunID: runID,
		Paths: paths,
		Stats: models.Stats{Simulations: n, Days: req.Days},
	}, nil
}

func (r *SimulationRunner) simulator(req models.SimulationRequest) (*path.Simulator, error) {
	settings := req.Options.Resolve()
	table := r.assets.Merge(req.Options.AssetParams)

	assets := make([]models.AssetParams, len(req.Portfolio))
	weights := make([]float64, len(req.Portfolio))
	for i, p := range req.Portfolio {
		assets[i] = table.Lookup(p.Ticker)
		weights[i] = p.Weight
	}

	var factor *correlation.Factor
	if settings.UseCorrelation {
		factor = correlation.NewFactor(req.Tickers())
	}

	return path.NewSimulator(path.Config{
		Settings:     settings,
		Params:       r.params,
		Assets:       assets,
		Weights:      weights,
		Factor:       factor,
		InitialValue: req.InitialValue,
		Days:         req.Days,
	})
}

// reportProgress counts completions and reports every max(1, n/20) of them,
// skipping repeats of the last reported percentage.
func reportProgress(done <-chan struct{}, n int, onProgress func(int)) {
	interval := n / progressSteps
	if interval < 1 {
		interval = 1
	}
	completed, last := 0, -1
	for range done {
		completed++
		if onProgress == nil || completed%interval != 0 {
			continue
		}
		pct := int(math.Round(100 * float64(completed) / float64(n)))
		if pct > last {
			last = pct
			onProgress(pct)
		}
	}
}

func errorKind(err error) string {
	switch {
	case models.IsConfigurationError(err):
		return "configuration"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "runtime"
	}
}
