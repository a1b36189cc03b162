package webhook

import (
	"context"
	"crypto/subtle"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"kora/internal/models"
	"kora/internal/repositories"
	"kora/internal/services/ledger"
)

// markerTTL bounds how long an in-flight reference marker shields the
// database from retry bursts. Gateways typically stop retrying well within
// this window.
const markerTTL = 24 * time.Hour

// ReferenceGuard is the Redis fast path in front of the authoritative
// ledger check. It is best-effort: a miss or error falls through to the
// atomic unit, which dedupes on the unique external_reference index.
type ReferenceGuard interface {
	ClaimEventReference(ctx context.Context, externalRef string, ttl time.Duration) (bool, error)
	ReleaseEventReference(ctx context.Context, externalRef string) error
}

// LedgerLookup finds previously ingested events.
type LedgerLookup interface {
	GetTransactionByExternalReference(ctx context.Context, externalRef string) (*models.Transaction, error)
}

type service struct {
	resolver    AccountResolver
	coordinator ledger.Service
	lookup      LedgerLookup
	guard       ReferenceGuard
	secret      []byte
}

// NewService creates the webhook ingestion adapter. guard may be nil, in
// which case every delivery goes straight to the atomic path.
func NewService(resolver AccountResolver, coordinator ledger.Service, lookup LedgerLookup, guard ReferenceGuard, secret string) Service {
	if resolver == nil {
		panic("resolver is required")
	}
	if coordinator == nil {
		panic("coordinator is required")
	}
	if lookup == nil {
		panic("lookup is required")
	}
	if secret == "" {
		panic("webhook secret is required")
	}
	return &service{
		resolver:    resolver,
		coordinator: coordinator,
		lookup:      lookup,
		guard:       guard,
		secret:      []byte(secret),
	}
}

func (s *service) HandleGatewayEvent(ctx context.Context, signature string, event GatewayEvent) (*Result, error) {
	if subtle.ConstantTimeCompare([]byte(signature), s.secret) != 1 {
		return nil, ErrInvalidSignature
	}

	if event.Event == "" {
		return nil, ErrMissingEvent
	}
	if event.Event != EventChargeCompleted {
		log.Printf("unhandled gateway event type: %s", event.Event)
		return &Result{Status: StatusIgnored, Message: "Unhandled event type"}, nil
	}

	data := event.Data
	if data.Email == "" || data.TxRef == "" || data.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrMissingFields
	}

	if s.guard != nil {
		claimed, err := s.guard.ClaimEventReference(ctx, data.TxRef, markerTTL)
		if err != nil {
			log.Printf("reference guard unavailable, continuing to ledger check: %v", err)
		} else if !claimed {
			// A prior delivery holds the marker. If its unit committed, ack
			// without touching the database transaction path; otherwise fall
			// through and let the unique index arbitrate.
			if _, lookupErr := s.lookup.GetTransactionByExternalReference(ctx, data.TxRef); lookupErr == nil {
				log.Printf("gateway event already processed: %s", data.TxRef)
				return &Result{Status: StatusAlreadyProcessed, Message: "Transaction already processed"}, nil
			}
		}
	}

	account, err := s.resolver.ResolveEmail(ctx, data.Email)
	if err != nil {
		s.releaseMarker(ctx, data.TxRef)
		if errors.Is(err, repositories.ErrAccountNotFound) || errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	record, err := s.coordinator.GatewayDeposit(ctx, ledger.GatewayDepositRequest{
		AccountID:         account.ID,
		Amount:            data.Amount,
		ExternalReference: data.TxRef,
		GatewayReference:  data.GatewayRef,
		Narration:         data.Narration,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateReference) {
			// A concurrent delivery won the append. That is success, not an
			// error: re-crediting is exactly what must not happen.
			log.Printf("gateway event already processed: %s", data.TxRef)
			return &Result{Status: StatusAlreadyProcessed, Message: "Transaction already processed"}, nil
		}
		// The credit did not commit; a later redelivery must get through.
		s.releaseMarker(ctx, data.TxRef)
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return &Result{Status: StatusProcessed, Message: "Deposit successful", Transaction: record}, nil
}

func (s *service) releaseMarker(ctx context.Context, ref string) {
	if s.guard == nil {
		return
	}
	if err := s.guard.ReleaseEventReference(ctx, ref); err != nil {
		log.Printf("failed to release reference marker %s: %v", ref, err)
	}
}
