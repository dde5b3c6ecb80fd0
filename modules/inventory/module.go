package inventory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module exposes the catalog to the rest of the application.
type Module struct {
	db       *gorm.DB
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
)

// NewModule creates a new inventory module. lock must be the same instance
// handed to the sales module.
func NewModule(db *gorm.DB, lock *catalog.StockLock, threshold int, logger types.Logger) *Module {
	m := &Module{
		db:     db,
		logger: logger,
	}
	m.service = NewService(catalog.NewRepository(db), lock, threshold, m, logger)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "inventory"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.ProductChangedV1.ToBase(),
	}
}

// PublishProductChanged publishes a ProductChanged event.
func (m *Module) PublishProductChanged(event events.ProductChangedEvent) error {
	if m.eventBus == nil {
		return nil
	}
	return events.ProductChangedV1.Publish(m.eventBus, event, nil)
}

// Health checks that the catalog store answers.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"low_stock_threshold": m.service.Threshold(),
		},
	}
}

// RegisterServices registers request-reply services in the service container.
// Names are prefixed by the framework, so "list" becomes
// "services.inventory.list".
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listProducts,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "low-stock", json.Unmarshal, json.Marshal, m.lowStock,
	); err != nil {
		return fmt.Errorf("failed to register low-stock service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getProduct,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.createProduct,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.updateProduct,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.deleteProduct,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	m.logger.Info("Registered services", "services", "services.inventory.{list,low-stock,get,create,update,delete}")
	return nil
}

// Start logs the effective configuration. The store is opened by main.
func (m *Module) Start(_ context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, product changes will not be published")
	}
	m.logger.Info("Inventory module started", "low_stock_threshold", m.service.Threshold())
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Inventory module stopped")
	return nil
}

// Service returns the inventory service instance.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) listProducts(ctx context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	var (
		products []catalog.Product
		err      error
	)
	if req.Search != "" {
		products, err = m.service.Search(ctx, req.Search)
	} else {
		products, err = m.service.ListAll(ctx)
	}
	if err != nil {
		return ListProductsResponse{}, err
	}
	return ListProductsResponse{Products: products, Total: len(products)}, nil
}

func (m *Module) lowStock(ctx context.Context, req LowStockRequest, _ *mono.Msg) (LowStockResponse, error) {
	products, threshold, err := m.service.LowStock(ctx, req.Threshold)
	if err != nil {
		return LowStockResponse{}, err
	}
	return LowStockResponse{Products: products, Threshold: threshold, Total: len(products)}, nil
}

func (m *Module) getProduct(ctx context.Context, req GetProductRequest, _ *mono.Msg) (catalog.Product, error) {
	product, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return catalog.Product{}, err
	}
	return *product, nil
}

func (m *Module) createProduct(ctx context.Context, req ProductInput, _ *mono.Msg) (catalog.Product, error) {
	product, err := m.service.Create(ctx, req)
	if err != nil {
		return catalog.Product{}, err
	}
	return *product, nil
}

func (m *Module) updateProduct(ctx context.Context, req UpdateProductRequest, _ *mono.Msg) (catalog.Product, error) {
	product, err := m.service.Update(ctx, req.ID, req.ProductInput)
	if err != nil {
		return catalog.Product{}, err
	}
	return *product, nil
}

func (m *Module) deleteProduct(ctx context.Context, req DeleteProductRequest, _ *mono.Msg) (DeleteProductResponse, error) {
	if err := m.service.Delete(ctx, req.ID); err != nil {
		return DeleteProductResponse{Deleted: false, ID: req.ID}, err
	}
	return DeleteProductResponse{Deleted: true, ID: req.ID}, nil
}
