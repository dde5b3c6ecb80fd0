package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/footwear-pos/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// fakeConn records every message written to it.
type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	writeErr error
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.messages...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func level(id uint, qty int) events.StockLevel {
	return events.StockLevel{ProductID: id, Article: "SH-1", Name: "Runner", Quantity: qty}
}

func TestDetector_Evaluate_StrictlyBelowThreshold(t *testing.T) {
	d := NewDetector(2, 10)

	raised := d.Evaluate([]events.StockLevel{level(1, 0), level(2, 1), level(3, 2), level(4, 7)}, SourceSale, "BILL-20240101-00001")

	require.Len(t, raised, 2)
	assert.Equal(t, uint(1), raised[0].ProductID)
	assert.Equal(t, uint(2), raised[1].ProductID)
	for _, a := range raised {
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, 2, a.Threshold)
		assert.Equal(t, SourceSale, a.Source)
		assert.Equal(t, "BILL-20240101-00001", a.Reference)
	}
}

func TestDetector_Evaluate_NothingLow(t *testing.T) {
	d := NewDetector(2, 10)

	assert.Nil(t, d.Evaluate([]events.StockLevel{level(1, 5)}, SourceProduct, ""))
	assert.Empty(t, d.Recent())
}

func TestDetector_DefaultsForNonPositiveSettings(t *testing.T) {
	d := NewDetector(0, -1)
	assert.Equal(t, 2, d.Threshold())
	assert.Equal(t, 50, d.limit)
}

func TestDetector_Recent_BoundedNewestFirst(t *testing.T) {
	d := NewDetector(5, 3)

	for i := uint(1); i <= 5; i++ {
		d.Evaluate([]events.StockLevel{level(i, 0)}, SourceSale, "")
	}

	recent := d.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, uint(5), recent[0].ProductID)
	assert.Equal(t, uint(4), recent[1].ProductID)
	assert.Equal(t, uint(3), recent[2].ProductID)
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	hub := NewHub(&mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	a, b := &fakeConn{}, &fakeConn{}
	require.True(t, hub.Register(&Client{ID: "a", Conn: a}))
	require.True(t, hub.Register(&Client{ID: "b", Conn: b}))
	assert.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(Message{Type: MessageTypeLowStock, Payload: map[string]int{"quantity": 1}})

	assert.Eventually(t, func() bool {
		return len(a.received()) == 1 && len(b.received()) == 1
	}, time.Second, 10*time.Millisecond)

	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(a.received()[0], &msg))
	assert.Equal(t, MessageTypeLowStock, msg.Type)
	assert.Equal(t, 1, msg.Payload["quantity"])

	cancel()
	hub.Wait()
	assert.True(t, a.isClosed())
	assert.True(t, b.isClosed())
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_WriteFailureDoesNotStopOthers(t *testing.T) {
	hub := NewHub(&mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		hub.Wait()
	}()
	go hub.Run(ctx)

	broken := &fakeConn{writeErr: errors.New("broken pipe")}
	healthy := &fakeConn{}
	require.True(t, hub.Register(&Client{ID: "broken", Conn: broken}))
	require.True(t, hub.Register(&Client{ID: "healthy", Conn: healthy}))

	hub.Broadcast(Message{Type: MessageTypeLowStock, Payload: "x"})

	assert.Eventually(t, func() bool {
		return len(healthy.received()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(&mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	client := &Client{ID: "a", Conn: &fakeConn{}}
	require.True(t, hub.Register(client))
	hub.Unregister(client)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 10*time.Millisecond)

	cancel()
	hub.Wait()
	assert.False(t, hub.Register(client))
}

func TestModule_SaleCompletedRaisesAlerts(t *testing.T) {
	m := NewModule(2, 10, &mockLogger{})
	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Stop(context.Background()) }()

	conn := &fakeConn{}
	require.True(t, m.hub.Register(&Client{ID: "terminal", Conn: conn}))

	err := m.handleSaleCompleted(context.Background(), events.SaleCompletedEvent{
		SaleID:     1,
		BillNumber: "BILL-20240101-00042",
		Remaining:  []events.StockLevel{level(1, 1), level(2, 4)},
	}, nil)
	require.NoError(t, err)

	recent := m.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, uint(1), recent[0].ProductID)
	assert.Equal(t, "BILL-20240101-00042", recent[0].Reference)

	assert.Eventually(t, func() bool {
		return len(conn.received()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestModule_ProductChangedRaisesAlert(t *testing.T) {
	m := NewModule(3, 10, &mockLogger{})

	require.NoError(t, m.handleProductChanged(context.Background(), events.ProductChangedEvent{
		Product: level(7, 2),
		Action:  events.ProductUpdated,
	}, nil))
	require.NoError(t, m.handleProductChanged(context.Background(), events.ProductChangedEvent{
		Product: level(8, 3),
		Action:  events.ProductCreated,
	}, nil))

	recent := m.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, uint(7), recent[0].ProductID)
	assert.Equal(t, SourceProduct, recent[0].Source)
	assert.Equal(t, events.ProductUpdated, recent[0].Reference)
}

func TestModule_Health(t *testing.T) {
	m := NewModule(2, 10, &mockLogger{})
	status := m.Health(context.Background())
	assert.True(t, status.Healthy)
	assert.Equal(t, 0, status.Details["subscribers"])
}
