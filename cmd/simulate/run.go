package main

import (
	"encoding/json"
	"fmt"
	"io"

	"PortfolioSim/internal/domain/models"
	"PortfolioSim/internal/usecase"
	"PortfolioSim/pkg/config"
	"PortfolioSim/pkg/logger"
	"PortfolioSim/pkg/metrics"

	"github.com/spf13/cobra"
)

func runCmd(root *rootOptions) *cobra.Command {
	var (
		flags  requestFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation in process and print a summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			lgr := root.logger(cmd.ErrOrStderr())
			x := newExecutor(cfg, lgr).Start(cmd.Context(), req)
			if asJSON {
				return streamJSON(cmd.OutOrStdout(), x.Events())
			}
			return renderRun(cmd.OutOrStdout(), cmd.ErrOrStderr(), req, x.Events())
		},
	}
	flags.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print every event as a JSON line")
	return cmd
}

func newExecutor(cfg *config.Config, lgr *logger.Logger) *usecase.Executor {
	opts := []usecase.RunnerOption{
		usecase.WithModelParams(cfg.Model),
		usecase.WithLimits(cfg.Limits()),
	}
	if cfg.Simulation.Workers > 0 {
		opts = append(opts, usecase.WithWorkers(cfg.Simulation.Workers))
	}
	if cfg.Simulation.Seed != nil {
		opts = append(opts, usecase.WithSeed(*cfg.Simulation.Seed))
	}
	return usecase.NewExecutor(usecase.NewSimulationRunner(lgr, metrics.Nop{}, opts...), lgr)
}

func streamJSON(w io.Writer, events <-chan models.Event) error {
	enc := json.NewEncoder(w)
	var runErr error
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		if ev.Type == models.EventError {
			runErr = fmt.Errorf("simulation failed: %s", ev.Message)
		}
	}
	return runErr
}

// renderRun draws a progress line on progress and the summary on out.
func renderRun(out, progress io.Writer, req models.SimulationRequest, events <-chan models.Event) error {
	for ev := range events {
		switch ev.Type {
		case models.EventStarted:
			fmt.Fprintf(progress, "run %s: %d trajectories x %d days\n", ev.RunID, req.Simulations, req.Days)
		case models.EventProgress:
			fmt.Fprintf(progress, "\rprogress %3d%%", ev.Progress)
		case models.EventComplete:
			fmt.Fprintln(progress)
			var stats models.Stats
			if ev.Stats != nil {
				stats = *ev.Stats
			}
			summarize(ev.Results, stats).print(out, req.InitialValue)
		case models.EventError:
			fmt.Fprintln(progress)
			return fmt.Errorf("simulation failed: %s", ev.Message)
		}
	}
	return nil
}
