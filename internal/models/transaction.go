package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeTransfer   = "transfer"
)

// Transaction statuses. Records created by the coordinator are born
// successful or not at all; pending and failed exist for asynchronous flows.
const (
	TransactionStatusPending    = "pending"
	TransactionStatusSuccessful = "successful"
	TransactionStatusFailed     = "failed"
)

// Transaction is an immutable ledger record. BalanceBefore/BalanceAfter are
// the sender-side balances captured inside the same atomic unit that applied
// the adjustment; the receiver-side pair is set for transfers only.
type Transaction struct {
	ID                    uint             `gorm:"primarykey" json:"id"`
	ReferenceNo           string           `gorm:"uniqueIndex;not null" json:"reference_no"`
	Type                  string           `gorm:"not null" json:"type"`
	SenderAccountID       uint             `gorm:"index;not null" json:"sender_account_id"`
	ReceiverAccountID     *uint            `gorm:"index" json:"receiver_account_id,omitempty"`
	Amount                decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"amount"`
	Status                string           `gorm:"not null;default:'pending'" json:"status"`
	BalanceBefore         decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"balance_before"`
	BalanceAfter          decimal.Decimal  `gorm:"type:numeric(20,2);not null" json:"balance_after"`
	ReceiverBalanceBefore *decimal.Decimal `gorm:"type:numeric(20,2)" json:"receiver_balance_before,omitempty"`
	ReceiverBalanceAfter  *decimal.Decimal `gorm:"type:numeric(20,2)" json:"receiver_balance_after,omitempty"`
	Description           string           `json:"description"`
	ExternalReference     *string          `gorm:"uniqueIndex" json:"external_reference,omitempty"`
	Metadata              JSON             `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// NewReferenceNo generates a ledger reference of the form TXN_1A2B3C4D.
// It is called explicitly at record-creation time, not from a persistence hook.
func NewReferenceNo() string {
	return "TXN_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
