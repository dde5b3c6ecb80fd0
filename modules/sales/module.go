package sales

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/domain/ledger"
	"github.com/example/footwear-pos/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// Module runs the sale transaction service.
type Module struct {
	service  *Service
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
)

// NewModule creates a new sales module. settingsSrc may be nil, in which
// case sales record no tax.
func NewModule(db *gorm.DB, lock *catalog.StockLock, settingsSrc SettingsSource, logger types.Logger) (*Module, error) {
	m := &Module{logger: logger}

	opts := []Option{WithPublisher(m)}
	if settingsSrc != nil {
		opts = append(opts, WithSettings(settingsSrc))
	}
	service, err := NewService(db, lock, logger, opts...)
	if err != nil {
		return nil, err
	}
	m.service = service
	return m, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return "sales"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.SaleCompletedV1.ToBase(),
	}
}

// PublishSaleCompleted publishes a SaleCompleted event.
func (m *Module) PublishSaleCompleted(event events.SaleCompletedEvent) error {
	if m.eventBus == nil {
		return nil
	}
	return events.SaleCompletedV1.Publish(m.eventBus, event, nil)
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "submit", json.Unmarshal, json.Marshal, m.submitSale,
	); err != nil {
		return fmt.Errorf("failed to register submit service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.listSales,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.getSale,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "summary", json.Unmarshal, json.Marshal, m.summary,
	); err != nil {
		return fmt.Errorf("failed to register summary service: %w", err)
	}

	m.logger.Info("Registered services", "services", "services.sales.{submit,list,get,summary}")
	return nil
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, sales will not be published")
	}
	m.logger.Info("Sales module started")
	return nil
}

// Stop gracefully shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("Sales module stopped")
	return nil
}

// Service returns the sales service instance.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) submitSale(ctx context.Context, req SubmitSaleRequest, _ *mono.Msg) (SaleReceipt, error) {
	receipt, err := m.service.Submit(ctx, req)
	if err != nil {
		return SaleReceipt{}, err
	}
	return *receipt, nil
}

func (m *Module) listSales(ctx context.Context, req ListSalesRequest, _ *mono.Msg) (ListSalesResponse, error) {
	rng, err := ParseDateRange(req.Start, req.End, m.service.Now())
	if err != nil {
		return ListSalesResponse{}, err
	}
	sales, err := m.service.List(ctx, rng)
	if err != nil {
		return ListSalesResponse{}, err
	}
	return ListSalesResponse{Sales: sales, Total: len(sales)}, nil
}

func (m *Module) getSale(ctx context.Context, req GetSaleRequest, _ *mono.Msg) (ledger.Sale, error) {
	sale, err := m.service.Get(ctx, req.ID)
	if err != nil {
		return ledger.Sale{}, err
	}
	return *sale, nil
}

func (m *Module) summary(ctx context.Context, req SummaryRequest, _ *mono.Msg) (Summary, error) {
	rng, err := ParseDateRange(req.Start, req.End, m.service.Now())
	if err != nil {
		return Summary{}, err
	}
	summary, err := m.service.Summary(ctx, rng, req.Period)
	if err != nil {
		return Summary{}, err
	}
	return *summary, nil
}
