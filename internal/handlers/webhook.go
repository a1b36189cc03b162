package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"kora/internal/services/webhook"
	"kora/internal/utils"
)

// signatureHeader carries the gateway's shared-secret hash on each delivery.
const signatureHeader = "verif-hash"

type WebhookHandler struct {
	service webhook.Service
}

func NewWebhookHandler(service webhook.Service) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleGatewayEvent ingests one gateway delivery. Anything but a clean 2xx
// makes the gateway retry, so duplicates and unhandled event types are
// acknowledged rather than rejected.
func (h *WebhookHandler) HandleGatewayEvent(c *fiber.Ctx) error {
	var event webhook.GatewayEvent
	if err := c.BodyParser(&event); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	result, err := h.service.HandleGatewayEvent(c.Context(), c.Get(signatureHeader), event)
	if err != nil {
		switch {
		case errors.Is(err, webhook.ErrInvalidSignature):
			return utils.Unauthorized(c, "Unauthorized: Invalid signature")
		case errors.Is(err, webhook.ErrMissingEvent):
			return utils.BadRequest(c, "Bad request: Event is undefined")
		case errors.Is(err, webhook.ErrMissingFields):
			return utils.BadRequest(c, "Bad request: Missing payment details")
		case errors.Is(err, webhook.ErrAccountNotFound):
			return utils.NotFound(c, "User not found")
		default:
			log.Printf("webhook processing error: %v", err)
			return utils.InternalError(c, "Internal Server Error")
		}
	}

	if result.Status == webhook.StatusProcessed {
		return utils.Created(c, fiber.Map{
			"message":     result.Message,
			"transaction": result.Transaction,
		})
	}
	return utils.Success(c, fiber.Map{"message": result.Message})
}
