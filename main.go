package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/example/footwear-pos/config"
	"github.com/example/footwear-pos/database"
	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/modules/alerts"
	"github.com/example/footwear-pos/modules/api"
	"github.com/example/footwear-pos/modules/cache"
	"github.com/example/footwear-pos/modules/inventory"
	"github.com/example/footwear-pos/modules/sales"
	settingsmod "github.com/example/footwear-pos/modules/settings"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/shopspring/decimal"
)

func main() {
	log.Println("=== Footwear POS ===")

	cfg, err := config.Load(os.Getenv("POS_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Money goes over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.Open(cfg.Database.Path, cfg.Database.LogMode)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}
	logger := app.Logger()

	// Sales and operator edits share one lock over product rows.
	lock := catalog.NewStockLock()

	var settingsCache settingsmod.Cache
	var cacheModule *cache.Module
	if cfg.CacheEnabled() {
		cacheModule = cache.NewModule(cfg.Redis.Addr, cfg.Redis.Prefix, cfg.Redis.TTL, logger)
		settingsCache = cacheModule.Cache()
	}

	settingsModule := settingsmod.NewModule(db, settingsCache, logger)
	inventoryModule := inventory.NewModule(db, lock, cfg.Inventory.LowStockThreshold, logger)
	salesModule, err := sales.NewModule(db, lock, settingsModule.Service(), logger)
	if err != nil {
		log.Fatalf("Failed to create sales module: %v", err)
	}
	alertsModule := alerts.NewModule(cfg.Inventory.LowStockThreshold, cfg.Alerts.History, logger)

	apiModule := api.NewModule(cfg.Server.Port, logger)
	apiModule.SetInventoryModule(inventoryModule)
	apiModule.SetSalesModule(salesModule)
	apiModule.SetSettingsModule(settingsModule)
	apiModule.SetAlertsModule(alertsModule)

	// Register modules with the framework.
	// Order: storage first, then the domain modules, then the HTTP adapter
	if cacheModule != nil {
		app.Register(cacheModule)
	}
	app.Register(settingsModule)
	app.Register(inventoryModule)
	app.Register(salesModule)
	app.Register(alertsModule)
	app.Register(apiModule)

	// Start application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				stopErr := app.Stop(ctx)
				if err := database.Close(db); err != nil {
					return errors.Join(stopErr, fmt.Errorf("close database: %w", err))
				}
				return stopErr
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	cacheInfo := "disabled"
	if cfg.CacheEnabled() {
		cacheInfo = cfg.Redis.Addr
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("  Database:            %s", cfg.Database.Path)
	log.Printf("  Settings cache:      %s", cacheInfo)
	log.Printf("  Low stock threshold: %d", cfg.Inventory.LowStockThreshold)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.Server.Port)
	log.Println("  GET    /health                       - Health check")
	log.Println("  GET    /api/v1/inventory[?search=]   - List or search products")
	log.Println("  GET    /api/v1/inventory/low-stock   - Products below threshold")
	log.Println("  GET    /api/v1/inventory/:id         - Get product")
	log.Println("  POST   /api/v1/inventory             - Create product")
	log.Println("  PUT    /api/v1/inventory/:id         - Replace product")
	log.Println("  DELETE /api/v1/inventory/:id         - Delete product")
	log.Println("  POST   /api/v1/sales                 - Submit a sale")
	log.Println("  GET    /api/v1/sales[?start=&end=]   - List sales")
	log.Println("  GET    /api/v1/sales/:id             - Get sale")
	log.Println("  GET    /api/v1/reports/sales         - Sales summary")
	log.Println("  GET    /api/v1/reports/sales/export  - Export sales as XLSX")
	log.Println("  GET    /api/v1/settings              - Read shop settings")
	log.Println("  PUT    /api/v1/settings              - Save shop settings")
	log.Println("  GET    /api/v1/alerts                - Recent low stock alerts")
	log.Println("")
	log.Printf("WebSocket Endpoint: ws://localhost:%d/ws/alerts", cfg.Server.Port)
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
