package models

import "time"

// User exists here only so human-facing identifiers (email, username) can be
// resolved to an account. Profile management and authentication live outside
// this service.
type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	UserName  string `gorm:"uniqueIndex" json:"user_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
