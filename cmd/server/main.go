package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"furniture-backend/internal/audit"
	"furniture-backend/internal/auth"
	"furniture-backend/internal/catalog"
	"furniture-backend/internal/config"
	"furniture-backend/internal/cutting"
	"furniture-backend/internal/database"
	"furniture-backend/internal/events"
	"furniture-backend/internal/inventory"
	"furniture-backend/internal/invoice"
	"furniture-backend/internal/logger"
	"furniture-backend/internal/metrics"
	"furniture-backend/internal/models"
	"furniture-backend/internal/orders"
	"furniture-backend/internal/suppliers"
	"furniture-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(logger.New(cfg.Env))

	db, err := database.Open(cfg)
	if err != nil {
		slog.Error("database init failed", "err", err)
		os.Exit(1)
	}

	var pub events.Publisher = events.NoopPublisher{}
	if cfg.NATSURL != "" {
		np, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			slog.Warn("nats unavailable, order events disabled", "url", cfg.NATSURL, "err", err)
		} else {
			pub = np
			defer func() { _ = np.Close() }()
		}
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			slog.Error("unexpected error", "path", c.Path(), "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PATCH,PUT,DELETE,OPTIONS",
	}))

	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected; every signed-in role (ADMIN, DEPARTMENT) gets past here
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	adminOnly := auth.RequireRole(models.RoleAdmin)

	protected.Get("/auth/me", auth.MeHandler())

	// Users
	protected.Post("/users", adminOnly, users.CreateUserHandler())
	protected.Get("/users", adminOnly, users.ListUsersHandler())
	protected.Patch("/users/:id", adminOnly, users.UpdateUserHandler())

	// Catalog
	protected.Get("/products", catalog.ListProductsHandler())
	protected.Get("/products/:id", catalog.GetProductHandler())
	protected.Post("/products", adminOnly, catalog.CreateProductHandler())
	protected.Patch("/products/:id", adminOnly, catalog.UpdateProductHandler())
	protected.Delete("/products/:id", adminOnly, catalog.DeleteProductHandler())

	// Orders
	orderH := orders.NewHandler(pub)
	protected.Post("/orders", orderH.Create())
	protected.Get("/orders", orderH.List())
	protected.Get("/orders/:id", orderH.Get())
	protected.Delete("/orders/:id", adminOnly, orderH.Delete())

	// Cutting slips; department access is checked per request
	slips := cutting.NewHandler(cutting.NewService(
		cutting.NewGormOrderStore(db),
		cutting.NewGormRuleStore(db),
	))
	protected.Get("/departments/:dept/cutting-slips", slips.GetSlip())
	protected.Get("/departments/:dept/cutting-slips/:orderId", slips.GetSlip())
	protected.Get("/departments/:dept/cutting-slip-exports", slips.ExportSlip())
	protected.Get("/departments/:dept/cutting-slip-exports/:orderId", slips.ExportSlip())

	// Suppliers (static paths before :id)
	sup := protected.Group("/suppliers", adminOnly)
	sup.Post("/purchases", suppliers.CreatePurchaseHandler())
	sup.Get("/purchases", suppliers.ListPurchasesHandler())
	sup.Get("/purchases/:id", suppliers.GetPurchaseHandler())
	sup.Post("/purchases/:purchaseId/payments", suppliers.AddPaymentHandler())
	sup.Get("/purchases/:purchaseId/payments", suppliers.ListPaymentsHandler())
	sup.Patch("/products/:productId", suppliers.UpdateProductHandler())
	sup.Delete("/products/:productId", suppliers.DeleteProductHandler())
	sup.Post("/", suppliers.CreateSupplierHandler())
	sup.Get("/", suppliers.ListSuppliersHandler())
	sup.Get("/:id", suppliers.GetSupplierHandler())
	sup.Patch("/:id", suppliers.UpdateSupplierHandler())
	sup.Delete("/:id", suppliers.DeleteSupplierHandler())
	sup.Post("/:supplierId/products", suppliers.CreateProductHandler())
	sup.Get("/:supplierId/products", suppliers.ListProductsHandler())
	sup.Get("/:id/balance", suppliers.BalanceHandler())
	sup.Get("/:id/analytics", suppliers.AnalyticsHandler())

	// Inventory
	inv := inventory.NewHandler(cfg.LowStockDefault)
	stock := protected.Group("/inventory")
	stock.Get("/", inv.List())
	stock.Get("/low-stock", inv.LowStock())
	stock.Get("/search", inv.Search())
	stock.Get("/supplier/:supplierId", inv.BySupplier())
	stock.Get("/analytics", adminOnly, inv.Analytics())
	stock.Get("/value-by-supplier", adminOnly, inv.ValueBySupplier())
	stock.Post("/", adminOnly, inv.Create())
	stock.Post("/batch-dispatch", inv.BatchDispatch())
	stock.Patch("/:productId/quantity", inv.UpdateQuantity())
	stock.Post("/:productId/dispatch", inv.Dispatch())
	stock.Delete("/:productId", inv.Delete())

	// Invoice scanning
	scan := protected.Group("/invoice-scanning")
	scan.Post("/parse", invoice.ParseHandler())
	scan.Post("/create-purchase", invoice.CreatePurchaseHandler())
	scan.Get("/suppliers", invoice.SuppliersHandler())
	scan.Post("/match-supplier", invoice.MatchSupplierHandler())

	// Audit
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler())
	protected.Post("/audit-logs/:id/undo", adminOnly, audit.UndoAuditLogHandler())

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			slog.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()
	slog.Info("server listening", "port", cfg.HTTPPort, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}
