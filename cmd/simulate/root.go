package main

import (
	"context"
	"io"
	"os"

	"PortfolioSim/pkg/config"
	"PortfolioSim/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func Execute(ctx context.Context) error {
	return newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "simulate",
		Short:         "Portfolio Monte Carlo simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file path (defaults when empty)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(runCmd(opts), submitCmd(opts), watchCmd(opts))
	return root
}

func (o *rootOptions) load() (*config.Config, error) {
	return config.LoadWithEnv(o.configPath)
}

func (o *rootOptions) logger(w io.Writer) *logger.Logger {
	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		level = zerolog.WarnLevel
	}
	return logger.NewWithWriter(zerolog.ConsoleWriter{Out: w, NoColor: true}, level)
}
