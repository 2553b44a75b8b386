package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"smswall/internal/config"
	"smswall/internal/models"
	"smswall/internal/storage"

	"gorm.io/gorm"
)

func main() {
	// Define command line flags
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration file")
	action := flag.String("action", "status", "Action to perform (migrate, purge, status)")
	age := flag.Int("age", 0, "For purge: remove pending confirmations older than this many minutes (0 removes everything)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database connection
	db, err := storage.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Perform requested action
	switch *action {
	case "migrate":
		if err := storage.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
	case "purge":
		if *age < 0 {
			log.Fatalf("Age must not be negative")
		}
		repo := storage.NewConfirmRepository(db)
		n, err := repo.Purge(time.Duration(*age) * time.Minute)
		if err != nil {
			log.Fatalf("Purge failed: %v", err)
		}
		log.Printf("Purged %d pending confirmations", n)
	case "status":
		if err := checkStatus(db); err != nil {
			log.Fatalf("Status check failed: %v", err)
		}
	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}

// checkStatus prints table existence and row counts
func checkStatus(db *gorm.DB) error {
	fmt.Println("Checking database status...")

	tables := []struct {
		name  string
		model interface{}
	}{
		{"lists", &models.MailingList{}},
		{"memberships", &models.ListMember{}},
		{"ownerships", &models.ListOwner{}},
		{"pending confirmations", &models.PendingConfirmation{}},
		{"display names", &models.UserName{}},
	}

	for _, t := range tables {
		if !db.Migrator().HasTable(t.model) {
			fmt.Printf("%-22s table does not exist\n", t.name)
			continue
		}
		var count int64
		if err := db.Model(t.model).Count(&count).Error; err != nil {
			return err
		}
		fmt.Printf("%-22s %d rows\n", t.name, count)
	}

	return nil
}
