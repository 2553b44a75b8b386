// smswall-cli injects a single inbound message, the way a telephony hook
// script would: one process per message, all state in the database.
package main

import (
	"flag"
	"log"

	"smswall/internal/config"
	"smswall/internal/logger"
	"smswall/internal/models"
	"smswall/internal/sender"
	"smswall/internal/storage"
	"smswall/internal/wall"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	from := flag.String("from", "", "Sender of incoming message")
	to := flag.String("to", "", "Recipient of incoming message")
	subject := flag.String("subject", "", "Subject of incoming message")
	message := flag.String("message", "", "Body of incoming message")
	clean := flag.Int("clean-confirm", -1, "Remove all pending confirm actions older than given age in minutes (0 removes everything)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	db, err := storage.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	snd, err := sender.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}

	w := wall.New(cfg, db, snd)

	// Purge before handling so we can't trash a confirm action the message
	// itself creates.
	if *clean >= 0 {
		n, err := w.CleanConfirmActions(*clean)
		if err != nil {
			log.Fatalf("Failed to purge pending confirmations: %v", err)
		}
		log.Printf("Purged %d pending confirmations", n)
	}

	msg := models.Message{Sender: *from, Recipient: *to, Subject: *subject, Body: *message}
	if msg.IsEmpty() {
		return
	}

	if err := w.HandleIncoming(msg, false); err != nil {
		log.Fatalf("Failed to handle message: %v", err)
	}
}
