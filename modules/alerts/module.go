package alerts

import (
	"context"
	"fmt"

	"github.com/example/footwear-pos/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// MessageTypeLowStock tags low-stock alert messages.
const MessageTypeLowStock = "low_stock"

// Module consumes sale and catalog events and broadcasts low-stock alerts.
type Module struct {
	detector *Detector
	hub      *Hub
	cancel   context.CancelFunc
	logger   types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new alerts module.
func NewModule(threshold, history int, logger types.Logger) *Module {
	return &Module{
		detector: NewDetector(threshold, history),
		hub:      NewHub(logger),
		logger:   logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "alerts"
}

// RegisterEventConsumers subscribes to sale and catalog events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.SaleCompletedV1, m.handleSaleCompleted, m); err != nil {
		return fmt.Errorf("failed to register SaleCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.ProductChangedV1, m.handleProductChanged, m); err != nil {
		return fmt.Errorf("failed to register ProductChanged consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "SaleCompleted, ProductChanged")
	return nil
}

// Start runs the broadcast hub.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.hub.Run(ctx)

	m.logger.Info("Alerts module started", "threshold", m.detector.Threshold())
	return nil
}

// Stop closes every subscriber connection.
func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
		m.hub.Wait()
	}
	m.logger.Info("Alerts module stopped")
	return nil
}

// Health reports subscriber and alert counts.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"subscribers":   m.hub.ClientCount(),
			"recent_alerts": len(m.detector.Recent()),
		},
	}
}

// Recent returns the latest alerts, newest first.
func (m *Module) Recent() []LowStockAlert {
	return m.detector.Recent()
}

// HandleWebSocket streams alerts to one subscriber until it disconnects.
func (m *Module) HandleWebSocket(c *websocket.Conn) {
	client := &Client{ID: uuid.New().String(), Conn: c}
	if !m.hub.Register(client) {
		_ = c.Close()
		return
	}
	defer m.hub.Unregister(client)

	m.logger.Info("Alert subscriber connected", "client_id", client.ID)

	// Subscribers only listen; reading detects the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Warn("Alert subscriber error", "client_id", client.ID, "error", err)
			}
			break
		}
	}

	m.logger.Info("Alert subscriber disconnected", "client_id", client.ID)
}

func (m *Module) handleSaleCompleted(_ context.Context, event events.SaleCompletedEvent, _ *mono.Msg) error {
	m.raise(m.detector.Evaluate(event.Remaining, SourceSale, event.BillNumber))
	return nil
}

func (m *Module) handleProductChanged(_ context.Context, event events.ProductChangedEvent, _ *mono.Msg) error {
	m.raise(m.detector.Evaluate([]events.StockLevel{event.Product}, SourceProduct, event.Action))
	return nil
}

func (m *Module) raise(alerts []LowStockAlert) {
	for _, a := range alerts {
		m.logger.Info("Low stock",
			"product_id", a.ProductID,
			"article", a.Article,
			"quantity", a.Quantity,
			"threshold", a.Threshold)
		m.hub.Broadcast(Message{Type: MessageTypeLowStock, Payload: a})
	}
}
