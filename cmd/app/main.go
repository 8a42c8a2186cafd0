package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"PortfolioSim/internal/di"
	"PortfolioSim/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path (empty for defaults)")
	checkOnly := flag.Bool("check", false, "validate the config and exit")
	flag.Parse()

	if err := run(*configPath, *checkOnly); err != nil {
		log.Print(err)
		os.Exit(1)
	}
}

func run(configPath string, checkOnly bool) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if checkOnly {
		log.Printf("config ok: env=%s listen=%s:%d queue=%t kafka=%t",
			cfg.Environment, cfg.Server.Host, cfg.Server.Port, cfg.Queue.Enabled, cfg.Kafka.Enabled)
		return nil
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	return app.Run()
}
