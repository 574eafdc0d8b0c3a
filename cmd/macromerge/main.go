// Command macromerge fetches macroeconomic indicators and as-of merges them onto every raw price file.
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

	app, err := di.InitializeMacroMerge(cfg)
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
