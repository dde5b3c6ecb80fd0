package api

import (
	"context"
	"fmt"
	"time"

	"github.com/example/footwear-pos/modules/alerts"
	"github.com/example/footwear-pos/modules/inventory"
	"github.com/example/footwear-pos/modules/sales"
	settingsmod "github.com/example/footwear-pos/modules/settings"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module serves the POS HTTP API.
type Module struct {
	app             *fiber.App
	handlers        *Handlers
	port            int
	inventoryModule *inventory.Module
	salesModule     *sales.Module
	settingsModule  *settingsmod.Module
	alertsModule    *alerts.Module
	logger          types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new API module.
func NewModule(port int, logger types.Logger) *Module {
	return &Module{
		port:   port,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// SetInventoryModule sets the inventory module dependency.
func (m *Module) SetInventoryModule(im *inventory.Module) {
	m.inventoryModule = im
}

// SetSalesModule sets the sales module dependency.
func (m *Module) SetSalesModule(sm *sales.Module) {
	m.salesModule = sm
}

// SetSettingsModule sets the settings module dependency.
func (m *Module) SetSettingsModule(sm *settingsmod.Module) {
	m.settingsModule = sm
}

// SetAlertsModule sets the alerts module dependency. Without it the alert
// routes are not registered.
func (m *Module) SetAlertsModule(am *alerts.Module) {
	m.alertsModule = am
}

// Start builds the Fiber app and starts listening.
func (m *Module) Start(_ context.Context) error {
	if err := m.setup(); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", m.port)
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	// Wait briefly to catch immediate startup errors
	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", addr)
	return nil
}

// Stop shuts the HTTP server down.
func (m *Module) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// GetApp returns the Fiber app (for testing).
func (m *Module) GetApp() *fiber.App {
	return m.app
}

func (m *Module) setup() error {
	if m.inventoryModule == nil {
		return fmt.Errorf("inventory module not set")
	}
	if m.salesModule == nil {
		return fmt.Errorf("sales module not set")
	}
	if m.settingsModule == nil {
		return fmt.Errorf("settings module not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "Footwear POS",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.handlers = NewHandlers(
		m.inventoryModule.Service(),
		m.salesModule.Service(),
		m.settingsModule.Service(),
		m.alertsModule,
		m.logger,
	)
	m.setupRoutes()
	return nil
}

func (m *Module) setupRoutes() {
	m.app.Get("/health", m.handlers.HealthCheck)

	if m.alertsModule != nil {
		m.app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		})
		m.app.Get("/ws/alerts", websocket.New(m.alertsModule.HandleWebSocket))
	}

	api := m.app.Group("/api/v1")

	inv := api.Group("/inventory")
	inv.Get("/", m.handlers.ListProducts)
	inv.Get("/low-stock", m.handlers.LowStock)
	inv.Get("/:id", m.handlers.GetProduct)
	inv.Post("/", m.handlers.CreateProduct)
	inv.Put("/:id", m.handlers.UpdateProduct)
	inv.Delete("/:id", m.handlers.DeleteProduct)

	sale := api.Group("/sales")
	sale.Post("/", m.handlers.SubmitSale)
	sale.Get("/", m.handlers.ListSales)
	sale.Get("/:id", m.handlers.GetSale)

	reports := api.Group("/reports")
	reports.Get("/sales", m.handlers.SalesSummary)
	reports.Get("/sales/export", m.handlers.ExportSales)

	settings := api.Group("/settings")
	settings.Get("/", m.handlers.GetSettings)
	settings.Post("/", m.handlers.SaveSettings)
	settings.Put("/", m.handlers.SaveSettings)

	if m.alertsModule != nil {
		api.Get("/alerts", m.handlers.ListAlerts)
	}
}

// errorHandler handles errors from Fiber routes.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   codeFor(code),
		Message: message,
	})
}
