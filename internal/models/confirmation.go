package models

import "time"

// PendingConfirmation is a sensitive command waiting for the sender to reply
// with "confirm". Sender is the primary key, so a user can have at most one
// action awaiting confirmation.
type PendingConfirmation struct {
	Sender    string `gorm:"primaryKey"`
	Recipient string `gorm:"not null"`
	Command   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (PendingConfirmation) TableName() string {
	return TableConfirmations
}
