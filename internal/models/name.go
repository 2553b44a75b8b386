package models

// UserName is a display name chosen with the setname command. Posts are
// annotated with it when present.
type UserName struct {
	Number string `gorm:"primaryKey"`
	Name   string `gorm:"not null"`
}

func (UserName) TableName() string {
	return TableNames
}
