package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kora/internal/models"
	"kora/internal/services/webhook"
)

type stubWebhookService struct {
	result *webhook.Result
	err    error
}

func (s *stubWebhookService) HandleGatewayEvent(ctx context.Context, signature string, event webhook.GatewayEvent) (*webhook.Result, error) {
	return s.result, s.err
}

func newWebhookApp(svc webhook.Service) *fiber.App {
	app := fiber.New()
	app.Post("/api/webhooks/gateway", NewWebhookHandler(svc).HandleGatewayEvent)
	return app
}

func postEvent(t *testing.T, app *fiber.App, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/webhooks/gateway", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("verif-hash", "whsec_test")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return resp.StatusCode, payload
}

func TestWebhookHandlerStatusMapping(t *testing.T) {
	validBody := `{"event":"charge.completed","data":{"email":"a@b.c","tx_ref":"TX1","amount":1500}}`

	tests := []struct {
		name       string
		service    *stubWebhookService
		wantStatus int
		wantKey    string
		wantValue  string
	}{
		{
			name:       "invalid signature",
			service:    &stubWebhookService{err: webhook.ErrInvalidSignature},
			wantStatus: fiber.StatusUnauthorized,
			wantKey:    "error",
			wantValue:  "Unauthorized: Invalid signature",
		},
		{
			name:       "missing event",
			service:    &stubWebhookService{err: webhook.ErrMissingEvent},
			wantStatus: fiber.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "Bad request: Event is undefined",
		},
		{
			name:       "missing fields",
			service:    &stubWebhookService{err: webhook.ErrMissingFields},
			wantStatus: fiber.StatusBadRequest,
			wantKey:    "error",
			wantValue:  "Bad request: Missing payment details",
		},
		{
			name:       "unknown payer",
			service:    &stubWebhookService{err: webhook.ErrAccountNotFound},
			wantStatus: fiber.StatusNotFound,
			wantKey:    "error",
			wantValue:  "User not found",
		},
		{
			name:       "unexpected failure",
			service:    &stubWebhookService{err: assert.AnError},
			wantStatus: fiber.StatusInternalServerError,
			wantKey:    "error",
			wantValue:  "Internal Server Error",
		},
		{
			name: "duplicate acknowledged with 200",
			service: &stubWebhookService{result: &webhook.Result{
				Status:  webhook.StatusAlreadyProcessed,
				Message: "Transaction already processed",
			}},
			wantStatus: fiber.StatusOK,
			wantKey:    "message",
			wantValue:  "Transaction already processed",
		},
		{
			name: "unhandled event acknowledged with 200",
			service: &stubWebhookService{result: &webhook.Result{
				Status:  webhook.StatusIgnored,
				Message: "Unhandled event type",
			}},
			wantStatus: fiber.StatusOK,
			wantKey:    "message",
			wantValue:  "Unhandled event type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newWebhookApp(tt.service)
			status, payload := postEvent(t, app, validBody)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantValue, payload[tt.wantKey])
		})
	}
}

func TestWebhookHandlerProcessed(t *testing.T) {
	record := &models.Transaction{ID: 1, ReferenceNo: "TXN_AB12CD34", Status: models.TransactionStatusSuccessful}
	app := newWebhookApp(&stubWebhookService{result: &webhook.Result{
		Status:      webhook.StatusProcessed,
		Message:     "Deposit successful",
		Transaction: record,
	}})

	status, payload := postEvent(t, app, `{"event":"charge.completed","data":{"email":"a@b.c","tx_ref":"TX1","amount":1500}}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "Deposit successful", payload["message"])

	tx, ok := payload["transaction"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "TXN_AB12CD34", tx["reference_no"])
}
