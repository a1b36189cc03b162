package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"kora/internal/models"
)

// TransactionFilter narrows ledger queries.
type TransactionFilter struct {
	Type string // empty matches all types
}

// Store is the combined account + ledger access surface used by the
// transaction coordinator. ExecuteInTransaction hands the callback a Store
// bound to the database transaction; every call made through that handle
// commits or rolls back as one unit.
type Store interface {
	// Account store
	GetAccountByID(ctx context.Context, id uint) (*models.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error)

	// GetAccountForUpdate takes a row lock on the account and must only be
	// called on a transaction-bound Store. Lock acquisition order for
	// multi-account units is ascending account ID.
	GetAccountForUpdate(ctx context.Context, id uint) (*models.Account, error)

	// AdjustBalance applies delta in a single guarded update that refuses to
	// take the balance below minResulting, and returns the new balance.
	AdjustBalance(ctx context.Context, id uint, delta, minResulting decimal.Decimal) (decimal.Decimal, error)

	// Ledger store
	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	GetTransactionByReference(ctx context.Context, referenceNo string) (*models.Transaction, error)
	GetTransactionByExternalReference(ctx context.Context, externalRef string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountID uint, filter TransactionFilter, limit, offset int) ([]models.Transaction, int64, error)

	ExecuteInTransaction(fn func(Store) error) error
}
