package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"kora/internal/models"
	"kora/internal/repositories"
)

// Service is the transaction coordinator interface.
type Service interface {
	Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, error)
	Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, error)
	Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal, description string) (*models.Transaction, error)

	// GatewayDeposit credits an externally-sourced payment exactly once,
	// keyed on the gateway's transaction reference.
	GatewayDeposit(ctx context.Context, req GatewayDepositRequest) (*models.Transaction, error)

	History(ctx context.Context, accountID uint, filter repositories.TransactionFilter, page Page) ([]models.Transaction, int64, error)
	GetByReference(ctx context.Context, referenceNo string) (*models.Transaction, error)
}

// Config holds coordinator configuration.
type Config struct {
	// ProcessingTimeout bounds each atomic unit. Zero means DefaultTimeout.
	ProcessingTimeout time.Duration
}

// Page is a validated pagination window.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps a page request to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// GatewayDepositRequest carries a validated gateway credit into the
// coordinator. ExternalReference is the idempotency key.
type GatewayDepositRequest struct {
	AccountID         uint
	Amount            decimal.Decimal
	ExternalReference string
	GatewayReference  string
	Narration         string
}

// MetricsCollector receives operational signals from the coordinator.
type MetricsCollector interface {
	RecordTransaction(txType string, amount decimal.Decimal)
	RecordOperationDuration(operation string, duration time.Duration)
	RecordError(operation, errType string)
}

// AccountCache is the slice of the cache layer the coordinator needs:
// invalidation after committed balance changes.
type AccountCache interface {
	InvalidateAccount(ctx context.Context, accountID uint) error
}
