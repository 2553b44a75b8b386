package storage

import (
	"fmt"
	"log"
	"time"

	"smswall/internal/config"
	"smswall/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Initialize opens the database connection described by the configuration.
// The relation name overrides are applied before the connection is used, so
// every model reports its configured table name from the first query on.
func Initialize(cfg *config.Config) (*gorm.DB, error) {
	models.SetTableNames(
		cfg.Tables.Lists,
		cfg.Tables.Members,
		cfg.Tables.Owners,
		cfg.Tables.Confirmations,
		cfg.Tables.Names,
	)

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		log.Printf("Opening SQLite database: %s", cfg.Database.Path)
		dialector = sqlite.Open(cfg.Database.Path)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Database.Username,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
			cfg.Database.Charset,
		)
		log.Printf("Connecting to database: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: NewGormLogger(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Printf("Database connection established successfully")
	return db, nil
}

// Migrate creates or updates the schema for every persisted relation.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MailingList{},
		&models.ListMember{},
		&models.ListOwner{},
		&models.PendingConfirmation{},
		&models.UserName{},
	)
}
