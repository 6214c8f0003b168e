package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/panelkit/authfront/internal"
	"github.com/panelkit/authfront/internal/config"
	"github.com/panelkit/authfront/internal/log"
)

var BuildVersion = "dev"

func main() {
	envFile := flag.String("env-file", "", "path to .env file (default: ./.env if present)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(BuildVersion)
		return
	}

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.LogError("Failed to load env file %s: %v", *envFile, err)
			os.Exit(1)
		}
	} else {
		// Best-effort: a missing ./.env just means config comes from the
		// process environment.
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	log.LogInfoWithFields("main", "Starting authfront", map[string]any{
		"version": BuildVersion,
	})

	app, err := internal.NewAuthFront(cfg)
	if err != nil {
		log.LogError("Failed to build application: %v", err)
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		log.LogError("Server exited with error: %v", err)
		os.Exit(1)
	}
}
