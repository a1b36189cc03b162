// Package routes wires repositories, services, and handlers together and
// registers the HTTP surface.
package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"kora/internal/config"
	"kora/internal/handlers"
	"kora/internal/middleware"
	"kora/internal/repositories"
	"kora/internal/services/directory"
	"kora/internal/services/ledger"
	"kora/internal/services/webhook"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	store := repositories.NewStore(db)
	userRepo := repositories.NewUserRepository(db)
	cacheService := repositories.CacheService

	coordinator := ledger.NewService(
		store,
		cacheService,
		ledger.Config{
			ProcessingTimeout: config.GetDurationEnv("LEDGER_TIMEOUT", ledger.DefaultTimeout),
		},
		&ledger.NoopMetricsCollector{},
	)

	dir := directory.NewService(userRepo, store, cacheService)

	webhookService := webhook.NewService(
		dir,
		coordinator,
		store,
		cacheService,
		config.GetEnv("GATEWAY_SECRET_HASH", ""),
	)

	txHandler := handlers.NewTransactionHandler(coordinator, dir)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	healthHandler := handlers.NewHealthHandler(db)

	auth := middleware.NewAuthMiddleware(config.GetEnv("JWT_SECRET", "kora"))

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// Gateway deliveries authenticate with the signature header, not JWT.
	api.Post("/webhooks/gateway", webhookHandler.HandleGatewayEvent)

	transactions := api.Group("/transactions", auth.Handler)
	transactions.Post("/deposit", txHandler.Deposit)
	transactions.Post("/withdraw", txHandler.Withdraw)
	transactions.Post("/transfer", txHandler.Transfer)
	transactions.Get("/", txHandler.ListTransactions)
	transactions.Get("/:reference", txHandler.GetTransaction)
}
