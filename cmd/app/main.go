package main

import (
	"flag"
	"log"
	"os"

	"GoldLens/pkg/config"
	"GoldLens/pkg/server"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s db=%s", cfg.Environment, cfg.Database.Path)

	app := server.New(cfg)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
