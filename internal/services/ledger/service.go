package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kora/internal/models"
	"kora/internal/repositories"
)

type service struct {
	store   repositories.Store
	cache   AccountCache
	config  Config
	metrics MetricsCollector
}

// NewService creates the transaction coordinator.
func NewService(store repositories.Store, cache AccountCache, config Config, metrics MetricsCollector) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if config.ProcessingTimeout == 0 {
		config.ProcessingTimeout = DefaultTimeout
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{
		store:   store,
		cache:   cache,
		config:  config,
		metrics: metrics,
	}
}

func (s *service) Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	record, err := s.runUnit(ctx, "deposit", func(ctx context.Context, tx repositories.Store) (*models.Transaction, error) {
		account, err := tx.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return nil, err
		}
		newBalance, err := tx.AdjustBalance(ctx, account.ID, amount, decimal.Zero)
		if err != nil {
			return nil, err
		}
		record := &models.Transaction{
			ReferenceNo:     models.NewReferenceNo(),
			Type:            models.TransactionTypeDeposit,
			SenderAccountID: account.ID,
			Amount:          amount,
			Status:          models.TransactionStatusSuccessful,
			BalanceBefore:   account.Balance,
			BalanceAfter:    newBalance,
			Description:     description,
		}
		return record, tx.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAccount(ctx, accountID)
	s.metrics.RecordTransaction(models.TransactionTypeDeposit, amount)
	return record, nil
}

func (s *service) Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(MinWithdrawal) {
		return nil, ErrAmountBelowMinimum
	}

	record, err := s.runUnit(ctx, "withdrawal", func(ctx context.Context, tx repositories.Store) (*models.Transaction, error) {
		account, err := tx.GetAccountForUpdate(ctx, accountID)
		if err != nil {
			return nil, err
		}
		// Sufficiency is checked on the locked pre-adjustment balance, and
		// the guarded update below independently refuses to cross zero.
		if account.Balance.LessThan(amount) {
			return nil, repositories.ErrInsufficientBalance
		}
		newBalance, err := tx.AdjustBalance(ctx, account.ID, amount.Neg(), decimal.Zero)
		if err != nil {
			return nil, err
		}
		record := &models.Transaction{
			ReferenceNo:     models.NewReferenceNo(),
			Type:            models.TransactionTypeWithdrawal,
			SenderAccountID: account.ID,
			Amount:          amount,
			Status:          models.TransactionStatusSuccessful,
			BalanceBefore:   account.Balance,
			BalanceAfter:    newBalance,
			Description:     description,
		}
		return record, tx.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAccount(ctx, accountID)
	s.metrics.RecordTransaction(models.TransactionTypeWithdrawal, amount)
	return record, nil
}

func (s *service) Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if senderID == receiverID {
		return nil, ErrSelfTransfer
	}

	record, err := s.runUnit(ctx, "transfer", func(ctx context.Context, tx repositories.Store) (*models.Transaction, error) {
		sender, receiver, err := lockAccountPair(ctx, tx, senderID, receiverID)
		if err != nil {
			return nil, err
		}
		if sender.Balance.LessThan(amount) {
			return nil, repositories.ErrInsufficientBalance
		}

		senderAfter, err := tx.AdjustBalance(ctx, sender.ID, amount.Neg(), decimal.Zero)
		if err != nil {
			return nil, err
		}
		receiverAfter, err := tx.AdjustBalance(ctx, receiver.ID, amount, decimal.Zero)
		if err != nil {
			return nil, err
		}

		receiverAccountID := receiver.ID
		receiverBefore := receiver.Balance
		record := &models.Transaction{
			ReferenceNo:           models.NewReferenceNo(),
			Type:                  models.TransactionTypeTransfer,
			SenderAccountID:       sender.ID,
			ReceiverAccountID:     &receiverAccountID,
			Amount:                amount,
			Status:                models.TransactionStatusSuccessful,
			BalanceBefore:         sender.Balance,
			BalanceAfter:          senderAfter,
			ReceiverBalanceBefore: &receiverBefore,
			ReceiverBalanceAfter:  &receiverAfter,
			Description:           description,
		}
		return record, tx.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAccount(ctx, senderID)
	s.cache.InvalidateAccount(ctx, receiverID)
	s.metrics.RecordTransaction(models.TransactionTypeTransfer, amount)
	return record, nil
}

func (s *service) GatewayDeposit(ctx context.Context, req GatewayDepositRequest) (*models.Transaction, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if req.ExternalReference == "" {
		return nil, ErrMissingReference
	}

	record, err := s.runUnit(ctx, "gateway_deposit", func(ctx context.Context, tx repositories.Store) (*models.Transaction, error) {
		// Authoritative duplicate check, inside the same unit as the credit.
		// A racing delivery that slips past it hits the unique index on
		// external_reference at the append and aborts this unit instead.
		if _, err := tx.GetTransactionByExternalReference(ctx, req.ExternalReference); err == nil {
			return nil, repositories.ErrDuplicateReference
		} else if !errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, err
		}

		account, err := tx.GetAccountForUpdate(ctx, req.AccountID)
		if err != nil {
			return nil, err
		}
		newBalance, err := tx.AdjustBalance(ctx, account.ID, req.Amount, decimal.Zero)
		if err != nil {
			return nil, err
		}

		narration := req.Narration
		if narration == "" {
			narration = "Online payment"
		}
		externalRef := req.ExternalReference
		record := &models.Transaction{
			ReferenceNo:       models.NewReferenceNo(),
			Type:              models.TransactionTypeDeposit,
			SenderAccountID:   account.ID,
			Amount:            req.Amount,
			Status:            models.TransactionStatusSuccessful,
			BalanceBefore:     account.Balance,
			BalanceAfter:      newBalance,
			Description:       fmt.Sprintf("Gateway deposit: %s", narration),
			ExternalReference: &externalRef,
			Metadata: models.NewJSON(map[string]interface{}{
				"gateway_reference": req.GatewayReference,
				"narration":         req.Narration,
			}),
		}
		return record, tx.CreateTransaction(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateAccount(ctx, req.AccountID)
	s.metrics.RecordTransaction(models.TransactionTypeDeposit, req.Amount)
	return record, nil
}

func (s *service) History(ctx context.Context, accountID uint, filter repositories.TransactionFilter, page Page) ([]models.Transaction, int64, error) {
	page = page.Normalize()
	txns, total, err := s.store.ListTransactions(ctx, accountID, filter, page.Size, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, total, nil
}

// GetByReference looks up a single ledger record by its reference number.
func (s *service) GetByReference(ctx context.Context, referenceNo string) (*models.Transaction, error) {
	txn, err := s.store.GetTransactionByReference(ctx, referenceNo)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return txn, nil
}

// runUnit executes fn as one bounded atomic unit and maps storage errors to
// the service's sentinel surface. On any failure the unit has already been
// rolled back; no record exists and no balance changed.
func (s *service) runUnit(ctx context.Context, operation string, fn func(context.Context, repositories.Store) (*models.Transaction, error)) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.ProcessingTimeout)
	defer cancel()

	start := time.Now()
	var record *models.Transaction
	err := s.store.ExecuteInTransaction(func(tx repositories.Store) error {
		var err error
		record, err = fn(ctx, tx)
		return err
	})
	s.metrics.RecordOperationDuration(operation, time.Since(start))

	if err != nil {
		mapped := mapStoreError(err)
		s.metrics.RecordError(operation, mapped.Error())
		return nil, mapped
	}
	return record, nil
}

func lockAccountPair(ctx context.Context, tx repositories.Store, senderID, receiverID uint) (sender, receiver *models.Account, err error) {
	firstID, secondID := senderID, receiverID
	if secondID < firstID {
		firstID, secondID = secondID, firstID
	}
	first, err := tx.GetAccountForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := tx.GetAccountForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrAccountNotFound):
		return ErrAccountNotFound
	case errors.Is(err, repositories.ErrInsufficientBalance):
		return ErrInsufficientFunds
	case errors.Is(err, repositories.ErrDuplicateReference):
		return ErrDuplicateReference
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return ErrRecordNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrRetryable
	default:
		return err
	}
}
