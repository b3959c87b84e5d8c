package main

import (
	"flag"
	"log"
	"os"

	"MillionaireMaker/internal/di"
	"MillionaireMaker/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s pool_strategy=%s kafka=%t clickhouse=%t jobs=%t",
		cfg.Environment, cfg.Engine.PoolStrategy, cfg.Kafka.Enabled, cfg.ClickHouse.Enabled, cfg.Jobs.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
