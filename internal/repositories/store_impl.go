package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kora/internal/models"
)

type store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by the given gorm handle.
func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) GetAccountByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *store) GetAccountByNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("account_number = ?", accountNumber).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *store) GetAccountByUserID(ctx context.Context, userID uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

func (s *store) GetAccountForUpdate(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

// AdjustBalance is the single write path for balances. The WHERE clause keeps
// the update from crossing minResulting even if a caller skipped the
// pre-check, so a lost-update race can never drive a balance negative.
func (s *store) AdjustBalance(ctx context.Context, id uint, delta, minResulting decimal.Decimal) (decimal.Decimal, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ? AND balance + ? >= ?", id, delta, minResulting).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the account does not exist or the guard rejected the delta.
		if _, err := s.GetAccountByID(ctx, id); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, ErrInsufficientBalance
	}

	account, err := s.GetAccountByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ReferenceNo == "" {
		txn.ReferenceNo = models.NewReferenceNo()
	}
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *store) GetTransactionByReference(ctx context.Context, referenceNo string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("reference_no = ?", referenceNo).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (s *store) GetTransactionByExternalReference(ctx context.Context, externalRef string) (*models.Transaction, error) {
	var txn models.Transaction
	err := s.db.WithContext(ctx).Where("external_reference = ?", externalRef).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (s *store) ListTransactions(ctx context.Context, accountID uint, filter TransactionFilter, limit, offset int) ([]models.Transaction, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("sender_account_id = ? OR receiver_account_id = ?", accountID, accountID)
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	var txns []models.Transaction
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txns).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, total, nil
}

func (s *store) ExecuteInTransaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&store{db: tx})
	})
}
