package storage

import (
	"errors"
	"time"

	"smswall/internal/models"

	"gorm.io/gorm"
)

// ErrConfirmationPending is returned by Put when the sender already has an
// action awaiting confirmation.
var ErrConfirmationPending = errors.New("sender already has a pending confirmation")

// ConfirmRepository handles database operations for PendingConfirmation
type ConfirmRepository struct {
	db *gorm.DB
}

// NewConfirmRepository creates a new ConfirmRepository
func NewConfirmRepository(db *gorm.DB) *ConfirmRepository {
	return &ConfirmRepository{db: db}
}

// MigrateTable ensures the PendingConfirmation table exists
func (r *ConfirmRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.PendingConfirmation{})
}

// Put stores the sender's pending confirmation. A second pending action for
// the same sender is rejected, not overwritten.
func (r *ConfirmRepository) Put(pc *models.PendingConfirmation) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.PendingConfirmation{}).
			Where("sender = ?", pc.Sender).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrConfirmationPending
		}
		return tx.Create(pc).Error
	})
}

// Get retrieves the sender's pending confirmation, or nil if there is none
func (r *ConfirmRepository) Get(sender string) (*models.PendingConfirmation, error) {
	var pc models.PendingConfirmation
	result := r.db.Where("sender = ?", sender).First(&pc)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &pc, nil
}

// Delete removes the sender's pending confirmation if one exists
func (r *ConfirmRepository) Delete(sender string) error {
	return r.db.Where("sender = ?", sender).Delete(&models.PendingConfirmation{}).Error
}

// Purge removes pending confirmations older than maxAge. A zero maxAge
// removes everything. Returns the number of rows deleted.
func (r *ConfirmRepository) Purge(maxAge time.Duration) (int64, error) {
	var result *gorm.DB
	if maxAge <= 0 {
		result = r.db.Where("1 = 1").Delete(&models.PendingConfirmation{})
	} else {
		cutoff := time.Now().Add(-maxAge)
		result = r.db.Where("created_at <= ?", cutoff).Delete(&models.PendingConfirmation{})
	}
	return result.RowsAffected, result.Error
}
