package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/tubeworks/accounts/internal/accounts/app"
)

func main() {
	// Load a local .env if present; real deployments set the environment.
	_ = godotenv.Load()

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
