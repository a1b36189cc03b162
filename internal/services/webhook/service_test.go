package webhook

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kora/internal/models"
	"kora/internal/repositories"
	"kora/internal/services/ledger"
)

const testSecret = "whsec_test"

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ResolveEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

type MockCoordinator struct {
	mock.Mock
}

func (m *MockCoordinator) Deposit(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, accountID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockCoordinator) Withdraw(ctx context.Context, accountID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, accountID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockCoordinator) Transfer(ctx context.Context, senderID, receiverID uint, amount decimal.Decimal, description string) (*models.Transaction, error) {
	args := m.Called(ctx, senderID, receiverID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockCoordinator) GatewayDeposit(ctx context.Context, req ledger.GatewayDepositRequest) (*models.Transaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockCoordinator) GetByReference(ctx context.Context, referenceNo string) (*models.Transaction, error) {
	args := m.Called(ctx, referenceNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockCoordinator) History(ctx context.Context, accountID uint, filter repositories.TransactionFilter, page ledger.Page) ([]models.Transaction, int64, error) {
	args := m.Called(ctx, accountID, filter, page)
	return nil, 0, args.Error(2)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) GetTransactionByExternalReference(ctx context.Context, ref string) (*models.Transaction, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) ClaimEventReference(ctx context.Context, ref string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, ref, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuard) ReleaseEventReference(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func chargeEvent() GatewayEvent {
	return GatewayEvent{
		Event: EventChargeCompleted,
		Data: GatewayEventData{
			Email:      "payer@example.com",
			TxRef:      "TX1",
			Amount:     decimal.NewFromInt(1500),
			Narration:  "Online top up",
			GatewayRef: "FLW-123",
			Status:     "successful",
		},
	}
}

func TestHandleGatewayEvent(t *testing.T) {
	t.Run("rejects bad signature before any processing", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		lookup := new(MockLookup)
		svc := NewService(resolver, coordinator, lookup, nil, testSecret)

		_, err := svc.HandleGatewayEvent(context.Background(), "wrong", chargeEvent())
		assert.ErrorIs(t, err, ErrInvalidSignature)

		resolver.AssertNotCalled(t, "ResolveEmail")
		coordinator.AssertNotCalled(t, "GatewayDeposit")
	})

	t.Run("missing event", func(t *testing.T) {
		svc := NewService(new(MockResolver), new(MockCoordinator), new(MockLookup), nil, testSecret)
		_, err := svc.HandleGatewayEvent(context.Background(), testSecret, GatewayEvent{})
		assert.ErrorIs(t, err, ErrMissingEvent)
	})

	t.Run("unhandled event acknowledged without mutation", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		svc := NewService(resolver, coordinator, new(MockLookup), nil, testSecret)

		result, err := svc.HandleGatewayEvent(context.Background(), testSecret, GatewayEvent{Event: "charge.failed"})
		require.NoError(t, err)
		assert.Equal(t, StatusIgnored, result.Status)

		resolver.AssertNotCalled(t, "ResolveEmail")
		coordinator.AssertNotCalled(t, "GatewayDeposit")
	})

	t.Run("missing payment details", func(t *testing.T) {
		svc := NewService(new(MockResolver), new(MockCoordinator), new(MockLookup), nil, testSecret)
		event := chargeEvent()
		event.Data.TxRef = ""
		_, err := svc.HandleGatewayEvent(context.Background(), testSecret, event)
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("first delivery credits the resolved account", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		svc := NewService(resolver, coordinator, new(MockLookup), nil, testSecret)

		account := &models.Account{ID: 7}
		resolver.On("ResolveEmail", mock.Anything, "payer@example.com").Return(account, nil)

		externalRef := "TX1"
		record := &models.Transaction{ID: 1, ExternalReference: &externalRef}
		coordinator.On("GatewayDeposit", mock.Anything, ledger.GatewayDepositRequest{
			AccountID:         7,
			Amount:            decimal.NewFromInt(1500),
			ExternalReference: "TX1",
			GatewayReference:  "FLW-123",
			Narration:         "Online top up",
		}).Return(record, nil)

		result, err := svc.HandleGatewayEvent(context.Background(), testSecret, chargeEvent())
		require.NoError(t, err)
		assert.Equal(t, StatusProcessed, result.Status)
		assert.Same(t, record, result.Transaction)

		resolver.AssertExpectations(t)
		coordinator.AssertExpectations(t)
	})

	t.Run("duplicate delivery acknowledged as success", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		svc := NewService(resolver, coordinator, new(MockLookup), nil, testSecret)

		resolver.On("ResolveEmail", mock.Anything, mock.Anything).Return(&models.Account{ID: 7}, nil)
		coordinator.On("GatewayDeposit", mock.Anything, mock.Anything).Return(nil, ledger.ErrDuplicateReference)

		result, err := svc.HandleGatewayEvent(context.Background(), testSecret, chargeEvent())
		require.NoError(t, err, "a duplicate must not surface as an error, or the gateway keeps retrying")
		assert.Equal(t, StatusAlreadyProcessed, result.Status)
		assert.Nil(t, result.Transaction)
	})

	t.Run("guard fast path skips the database for processed references", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		lookup := new(MockLookup)
		guard := new(MockGuard)
		svc := NewService(resolver, coordinator, lookup, guard, testSecret)

		guard.On("ClaimEventReference", mock.Anything, "TX1", mock.Anything).Return(false, nil)
		lookup.On("GetTransactionByExternalReference", mock.Anything, "TX1").Return(&models.Transaction{ID: 1}, nil)

		result, err := svc.HandleGatewayEvent(context.Background(), testSecret, chargeEvent())
		require.NoError(t, err)
		assert.Equal(t, StatusAlreadyProcessed, result.Status)

		coordinator.AssertNotCalled(t, "GatewayDeposit")
		guard.AssertExpectations(t)
		lookup.AssertExpectations(t)
	})

	t.Run("unclaimed marker without a record falls through to the atomic path", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		lookup := new(MockLookup)
		guard := new(MockGuard)
		svc := NewService(resolver, coordinator, lookup, guard, testSecret)

		guard.On("ClaimEventReference", mock.Anything, "TX1", mock.Anything).Return(false, nil)
		lookup.On("GetTransactionByExternalReference", mock.Anything, "TX1").Return(nil, repositories.ErrTransactionNotFound)
		resolver.On("ResolveEmail", mock.Anything, mock.Anything).Return(&models.Account{ID: 7}, nil)
		coordinator.On("GatewayDeposit", mock.Anything, mock.Anything).Return(nil, ledger.ErrDuplicateReference)

		result, err := svc.HandleGatewayEvent(context.Background(), testSecret, chargeEvent())
		require.NoError(t, err)
		assert.Equal(t, StatusAlreadyProcessed, result.Status)
	})

	t.Run("unknown payer releases the marker", func(t *testing.T) {
		resolver := new(MockResolver)
		guard := new(MockGuard)
		svc := NewService(resolver, new(MockCoordinator), new(MockLookup), guard, testSecret)

		guard.On("ClaimEventReference", mock.Anything, "TX1", mock.Anything).Return(true, nil)
		guard.On("ReleaseEventReference", mock.Anything, "TX1").Return(nil)
		resolver.On("ResolveEmail", mock.Anything, mock.Anything).Return(nil, repositories.ErrAccountNotFound)

		_, err := svc.HandleGatewayEvent(context.Background(), testSecret, chargeEvent())
		assert.ErrorIs(t, err, ErrAccountNotFound)
		guard.AssertExpectations(t)
	})

	t.Run("failed credit releases the marker for redelivery", func(t *testing.T) {
		resolver := new(MockResolver)
		coordinator := new(MockCoordinator)
		guard := new(MockGuard)
		svc := NewService(resolver, coordinator, new(MockLookup), guard, testSecret)

		guard.On("ClaimEventReference", mock.Anything, "TX1", mock.Anything).Return(true, nil)
		guard.On("ReleaseEventReference", mock.Anything, "TX1").Return(nil)
		resolver.On("ResolveEmail", mock.Anything, mock.Anything).Return(&models.Account{ID: 7}, nil)
		coordinator.On("GatewayDeposit", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		_, err := svc.HandleGatewayEvent(context.Background(), testSecret, chargeEvent())
		assert.Error(t, err)
		guard.AssertExpectations(t)
	})
}
