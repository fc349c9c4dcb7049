package models

import "time"

// User represents a registered account. Email is the login identifier.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:254;uniqueIndex;not null"`
	Username     string `gorm:"size:150;uniqueIndex;not null"`
	FirstName    string `gorm:"size:150;not null"`
	LastName     string `gorm:"size:150;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Avatar       string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
