package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account statuses
const (
	AccountStatusActive = "active"
	AccountStatusLocked = "locked"
)

// Account holds a single custodial balance. The balance column is the only
// mutable shared state in the system and is adjusted exclusively through the
// repository's guarded update, never by read-modify-write in callers.
type Account struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	UserID        uint            `gorm:"uniqueIndex;not null" json:"user_id"`
	AccountNumber string          `gorm:"uniqueIndex;not null" json:"account_number"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	Currency      string          `gorm:"default:'NGN'" json:"currency"`
	Status        string          `gorm:"default:'active'" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
