package storage

import (
	"smswall/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListRepository handles database operations for lists, memberships, and
// ownerships. Mutations that touch more than one relation run inside a
// single transaction so readers never observe a half-created or
// half-deleted list.
type ListRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new ListRepository
func NewListRepository(db *gorm.DB) *ListRepository {
	return &ListRepository{db: db}
}

// MigrateTables ensures the list, membership, and ownership tables exist
func (r *ListRepository) MigrateTables() error {
	return r.db.AutoMigrate(&models.MailingList{}, &models.ListMember{}, &models.ListOwner{})
}

// Get retrieves a list by shortcode, or nil if it does not exist
func (r *ListRepository) Get(shortcode string) (*models.MailingList, error) {
	var list models.MailingList
	result := r.db.Where("shortcode = ?", shortcode).First(&list)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &list, nil
}

// Exists reports whether a list with the given shortcode exists
func (r *ListRepository) Exists(shortcode string) (bool, error) {
	var count int64
	result := r.db.Model(&models.MailingList{}).Where("shortcode = ?", shortcode).Count(&count)
	return count > 0, result.Error
}

// Create inserts the list row and grants the initial owner membership and
// ownership, all in one transaction.
func (r *ListRepository) Create(list *models.MailingList, initialOwner string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(list).Error; err != nil {
			return err
		}
		member := models.ListMember{List: list.Shortcode, Member: initialOwner}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
			return err
		}
		owner := models.ListOwner{List: list.Shortcode, Owner: initialOwner}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&owner).Error
	})
}

// Delete removes the list row and every membership and ownership row for it
// in one transaction. It returns the members the list had before deletion so
// the caller can notify them.
func (r *ListRepository) Delete(shortcode string) ([]string, error) {
	var members []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ListMember{}).
			Where("list = ?", shortcode).
			Pluck("member", &members).Error; err != nil {
			return err
		}
		if err := tx.Where("shortcode = ?", shortcode).Delete(&models.MailingList{}).Error; err != nil {
			return err
		}
		if err := tx.Where("list = ?", shortcode).Delete(&models.ListMember{}).Error; err != nil {
			return err
		}
		return tx.Where("list = ?", shortcode).Delete(&models.ListOwner{}).Error
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember inserts a membership row, ignoring duplicates. It reports
// whether the insert changed anything, so callers can skip the duplicate
// notification.
func (r *ListRepository) AddMember(list, member string) (bool, error) {
	row := models.ListMember{List: list, Member: member}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RemoveMember deletes the membership row and, in the same transaction, any
// ownership row for the same pair. Ownership never outlives membership.
func (r *ListRepository) RemoveMember(list, member string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list = ? AND member = ?", list, member).Delete(&models.ListMember{}).Error; err != nil {
			return err
		}
		return tx.Where("list = ? AND owner = ?", list, member).Delete(&models.ListOwner{}).Error
	})
}

// Members returns the member numbers of a list
func (r *ListRepository) Members(list string) ([]string, error) {
	var members []string
	result := r.db.Model(&models.ListMember{}).Where("list = ?", list).Pluck("member", &members)
	return members, result.Error
}

// IsOwner reports whether the given number owns the list
func (r *ListRepository) IsOwner(list, owner string) (bool, error) {
	var count int64
	result := r.db.Model(&models.ListOwner{}).
		Where("list = ? AND owner = ?", list, owner).
		Count(&count)
	return count > 0, result.Error
}

// AddOwner inserts an ownership row, ignoring duplicates
func (r *ListRepository) AddOwner(list, owner string) error {
	row := models.ListOwner{List: list, Owner: owner}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// RemoveOwner deletes an ownership row. Membership is untouched.
func (r *ListRepository) RemoveOwner(list, owner string) error {
	return r.db.Where("list = ? AND owner = ?", list, owner).Delete(&models.ListOwner{}).Error
}

// SetOwnerOnly updates the owner-only posting flag
func (r *ListRepository) SetOwnerOnly(list string, ownerOnly bool) error {
	return r.db.Model(&models.MailingList{}).
		Where("shortcode = ?", list).
		Update("owner_only", ownerOnly).Error
}

// SetPublic updates the public-join flag
func (r *ListRepository) SetPublic(list string, isPublic bool) error {
	return r.db.Model(&models.MailingList{}).
		Where("shortcode = ?", list).
		Update("is_public", isPublic).Error
}
