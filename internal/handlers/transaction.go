package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"kora/internal/models"
	"kora/internal/repositories"
	"kora/internal/services/directory"
	"kora/internal/services/ledger"
	"kora/internal/utils"
	"kora/internal/utils/pagination"
)

// TransactionHandler exposes the coordinator's operations. Request bodies
// are typed and validated here before anything reaches the coordinator.
type TransactionHandler struct {
	coordinator ledger.Service
	directory   directory.Service
}

func NewTransactionHandler(coordinator ledger.Service, dir directory.Service) *TransactionHandler {
	return &TransactionHandler{
		coordinator: coordinator,
		directory:   dir,
	}
}

type depositRequest struct {
	AccountRef  string          `json:"account_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type transferRequest struct {
	SenderRef   string          `json:"sender_ref"`
	ReceiverRef string          `json:"receiver_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

func (h *TransactionHandler) Deposit(c *fiber.Ctx) error {
	var input depositRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.AccountRef == "" || input.Description == "" || input.Amount.IsZero() {
		return utils.BadRequest(c, "All fields are required")
	}

	account, err := h.directory.Resolve(c.Context(), input.AccountRef)
	if err != nil {
		return h.resolveError(c, err, "Account not found")
	}

	record, err := h.coordinator.Deposit(c.Context(), account.ID, input.Amount, input.Description)
	if err != nil {
		return h.coordinatorError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"message":     "Deposit successful",
		"transaction": record,
	})
}

func (h *TransactionHandler) Withdraw(c *fiber.Ctx) error {
	var input depositRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.AccountRef == "" || input.Description == "" || input.Amount.IsZero() {
		return utils.BadRequest(c, "All fields are required")
	}

	account, err := h.directory.Resolve(c.Context(), input.AccountRef)
	if err != nil {
		return h.resolveError(c, err, "Account not found")
	}

	record, err := h.coordinator.Withdraw(c.Context(), account.ID, input.Amount, input.Description)
	if err != nil {
		return h.coordinatorError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"message":     "Withdrawal successful",
		"transaction": record,
	})
}

func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	var input transferRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}
	if input.SenderRef == "" || input.ReceiverRef == "" || input.Description == "" || input.Amount.IsZero() {
		return utils.BadRequest(c, "All fields are required")
	}

	sender, err := h.directory.Resolve(c.Context(), input.SenderRef)
	if err != nil {
		return h.resolveError(c, err, "Sender not found")
	}
	receiver, err := h.directory.Resolve(c.Context(), input.ReceiverRef)
	if err != nil {
		return h.resolveError(c, err, "Receiver not found")
	}

	record, err := h.coordinator.Transfer(c.Context(), sender.ID, receiver.ID, input.Amount, input.Description)
	if err != nil {
		return h.coordinatorError(c, err)
	}

	return utils.Created(c, fiber.Map{
		"message":     "Transfer successful",
		"transaction": record,
	})
}

func (h *TransactionHandler) ListTransactions(c *fiber.Ctx) error {
	accountRef := c.Query("account_ref")
	if accountRef == "" {
		return utils.BadRequest(c, "account_ref is required")
	}

	account, err := h.directory.Resolve(c.Context(), accountRef)
	if err != nil {
		return h.resolveError(c, err, "Account not found")
	}

	p := pagination.ParseFromRequest(c)
	filter := repositories.TransactionFilter{Type: c.Query("type")}
	if t := filter.Type; t != "" &&
		t != models.TransactionTypeDeposit &&
		t != models.TransactionTypeWithdrawal &&
		t != models.TransactionTypeTransfer {
		return utils.BadRequest(c, "Invalid transaction type")
	}

	records, total, err := h.coordinator.History(c.Context(), account.ID, filter, ledger.Page{Number: p.Page, Size: p.Limit})
	if err != nil {
		log.Printf("transaction history error: %v", err)
		return utils.InternalError(c, "Failed to retrieve transactions")
	}
	p.Total = total

	return utils.Success(c, pagination.Response(p, records))
}

func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	record, err := h.coordinator.GetByReference(c.Context(), c.Params("reference"))
	if err != nil {
		if errors.Is(err, ledger.ErrRecordNotFound) {
			return utils.NotFound(c, "Transaction not found")
		}
		log.Printf("transaction lookup error: %v", err)
		return utils.InternalError(c, "Internal Server Error")
	}
	return utils.Success(c, fiber.Map{"transaction": record})
}

func (h *TransactionHandler) resolveError(c *fiber.Ctx, err error, notFoundMsg string) error {
	if errors.Is(err, repositories.ErrAccountNotFound) || errors.Is(err, repositories.ErrUserNotFound) {
		return utils.NotFound(c, notFoundMsg)
	}
	log.Printf("account resolution error: %v", err)
	return utils.InternalError(c, "Internal Server Error")
}

func (h *TransactionHandler) coordinatorError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount):
		return utils.BadRequest(c, "Amount must be greater than zero")
	case errors.Is(err, ledger.ErrAmountBelowMinimum):
		return utils.BadRequest(c, "Minimum withdrawal amount is "+ledger.MinWithdrawal.String())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.BadRequest(c, "Insufficient funds")
	case errors.Is(err, ledger.ErrSelfTransfer):
		return utils.BadRequest(c, "Cannot transfer to the same account")
	case errors.Is(err, ledger.ErrAccountNotFound):
		return utils.NotFound(c, "Account not found")
	case errors.Is(err, ledger.ErrRetryable):
		log.Printf("transaction did not complete: %v", err)
		return utils.InternalError(c, "Transaction did not complete, please retry")
	default:
		log.Printf("transaction error: %v", err)
		return utils.InternalError(c, "Internal Server Error")
	}
}
