package webhook

import (
	"context"

	"github.com/shopspring/decimal"

	"kora/internal/models"
)

// Gateway event types. Only charge.completed triggers crediting; other
// recognized events are acknowledged without mutation.
const (
	EventChargeCompleted = "charge.completed"
)

// Result statuses
const (
	StatusProcessed        = "processed"
	StatusAlreadyProcessed = "already_processed"
	StatusIgnored          = "ignored"
)

// GatewayEvent is the payment gateway's webhook payload.
type GatewayEvent struct {
	Event string           `json:"event"`
	Data  GatewayEventData `json:"data"`
}

// GatewayEventData carries the fields this service consumes. TxRef is the
// gateway's transaction reference and the idempotency key.
type GatewayEventData struct {
	Email      string          `json:"email"`
	TxRef      string          `json:"tx_ref"`
	Amount     decimal.Decimal `json:"amount"`
	Narration  string          `json:"narration"`
	GatewayRef string          `json:"gateway_ref"`
	Status     string          `json:"status"`
}

// Result is the outcome of one delivery. A duplicate delivery yields
// StatusAlreadyProcessed with no Transaction on the second copy.
type Result struct {
	Status      string              `json:"status"`
	Message     string              `json:"message"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// Service ingests gateway events.
type Service interface {
	HandleGatewayEvent(ctx context.Context, signature string, event GatewayEvent) (*Result, error)
}

// AccountResolver maps the payer's email to an account.
type AccountResolver interface {
	ResolveEmail(ctx context.Context, email string) (*models.Account, error)
}
