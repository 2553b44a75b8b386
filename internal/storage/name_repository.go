package storage

import (
	"smswall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NameRepository handles database operations for UserName
type NameRepository struct {
	db *gorm.DB
}

// NewNameRepository creates a new NameRepository
func NewNameRepository(db *gorm.DB) *NameRepository {
	return &NameRepository{db: db}
}

// MigrateTable ensures the UserName table exists
func (r *NameRepository) MigrateTable() error {
	return r.db.AutoMigrate(&models.UserName{})
}

// SetName stores or replaces the display name for a number
func (r *NameRepository) SetName(number, name string) error {
	row := models.UserName{Number: number, Name: name}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"name"}),
	}).Create(&row).Error
}

// GetName returns the display name for a number, or "" if none is set
func (r *NameRepository) GetName(number string) (string, error) {
	var row models.UserName
	result := r.db.Where("number = ?", number).First(&row)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", result.Error
	}
	return row.Name, nil
}
