package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"polycopy/api"
	"polycopy/config"
	"polycopy/secrets"
	"polycopy/storage"
	"polycopy/syncer"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("POLYCOPY_CONFIG"))
	if err != nil {
		log.Fatalf("[executor] failed to load config: %v", err)
	}

	cipher, err := secrets.NewFernetCipher(config.EncryptionKey())
	if err != nil {
		log.Fatalf("[executor] ENCRYPTION_KEY is missing or invalid: %v", err)
	}

	store, err := storage.NewPostgres()
	if err != nil {
		log.Fatalf("[executor] failed to init storage: %v", err)
	}
	defer store.Close()

	log.Println("[executor] PostgreSQL storage initialized")

	client := api.NewClient(cfg.API.ClobURL, cfg.API.GammaURL, cfg.API.DataURL)

	executor := syncer.NewExecutor(store, client, cipher, cfg.Executor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := executor.Start(ctx); err != nil {
		log.Fatalf("[executor] failed to start: %v", err)
	}
	defer executor.Stop()

	log.Println("[executor] Running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[executor] Received shutdown signal, stopping gracefully...")
}
