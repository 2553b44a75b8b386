package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smswall/internal/config"
	"smswall/internal/crash"
	"smswall/internal/gateway"
	"smswall/internal/logger"
	"smswall/internal/sender"
	"smswall/internal/storage"
	"smswall/internal/telegram"
	"smswall/internal/wall"
)

func main() {
	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging first
	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	defer crash.RecoverWithStackAndExit("main")

	// Open the database and ensure the schema exists
	db, err := storage.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Outbound delivery capability
	snd, err := sender.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}

	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional Telegram bridge wraps the sender so bridged subscribers get
	// their messages over Telegram
	var bridge *telegram.Bridge
	if cfg.Telegram.Enabled {
		bridge, err = telegram.NewBridge(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bridge: %v", err)
		}
		snd = bridge.WithFallback(snd)
	}

	w := wall.New(cfg, db, snd)

	if bridge != nil {
		if err := bridge.Start(ctx, w); err != nil {
			log.Fatalf("Failed to start Telegram bridge: %v", err)
		}
	}

	// Start HTTP server in a goroutine
	server := gateway.NewServer(cfg, w)
	crash.SafeGoroutine("webhook-server", func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	})

	// Periodically expire stale pending confirmations
	w.StartConfirmJanitor(ctx, time.Minute)

	log.Println("SMS wall is running")

	// Create a channel for receiving OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Wait for signal
	sig := <-sigChan
	log.Printf("Received signal: %v, shutting down...", sig)

	// Gracefully shutdown server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Server gracefully stopped")
}
