package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"polycopy/api"
	"polycopy/config"
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
		log.Fatalf("[watcher] failed to load config: %v", err)
	}

	store, err := storage.NewPostgres()
	if err != nil {
		log.Fatalf("[watcher] failed to init storage: %v", err)
	}
	defer store.Close()

	log.Println("[watcher] PostgreSQL storage initialized")

	client := api.NewClient(cfg.API.ClobURL, cfg.API.GammaURL, cfg.API.DataURL)

	watcher := syncer.NewWatcher(store, client, cfg.Watcher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := watcher.Start(ctx); err != nil {
		log.Fatalf("[watcher] failed to start: %v", err)
	}
	defer watcher.Stop()

	log.Println("[watcher] Running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[watcher] Received shutdown signal, stopping gracefully...")
}
