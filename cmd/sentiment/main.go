// Command sentiment scores a headline file and writes daily sentiment aggregates.
package main

import (
	"flag"
	"log"
	"os"

	"FinMerge/internal/di"
	"FinMerge/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeSentiment(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	runErr := app.Run()
	if err := app.Close(); err != nil {
		log.Printf("close: %v", err)
	}
	if runErr != nil {
		log.Printf("app error: %v", runErr)
		os.Exit(1)
	}
}
