// Package alerts raises low-stock alerts from sale and catalog events and
// pushes them to connected terminals.
package alerts

import (
	"sync"
	"time"

	"github.com/example/footwear-pos/events"
	"github.com/google/uuid"
)

// Alert sources.
const (
	SourceSale    = "sale"
	SourceProduct = "product"
)

// LowStockAlert reports a product whose quantity fell below the threshold.
type LowStockAlert struct {
	ID        string    `json:"id"`
	ProductID uint      `json:"product_id"`
	Article   string    `json:"article"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Threshold int       `json:"threshold"`
	Source    string    `json:"source"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Detector turns stock levels into alerts and keeps the most recent ones.
type Detector struct {
	threshold int
	limit     int
	recent    []LowStockAlert
	mu        sync.RWMutex
	now       func() time.Time
}

// NewDetector creates a detector that keeps at most limit alerts.
func NewDetector(threshold, limit int) *Detector {
	if threshold <= 0 {
		threshold = 2
	}
	if limit <= 0 {
		limit = 50
	}
	return &Detector{
		threshold: threshold,
		limit:     limit,
		recent:    make([]LowStockAlert, 0, limit),
		now:       time.Now,
	}
}

// Threshold returns the alerting threshold.
func (d *Detector) Threshold() int {
	return d.threshold
}

// Evaluate records an alert for every level strictly below the threshold and
// returns the new alerts.
func (d *Detector) Evaluate(levels []events.StockLevel, source, reference string) []LowStockAlert {
	var raised []LowStockAlert
	for _, lvl := range levels {
		if lvl.Quantity >= d.threshold {
			continue
		}
		raised = append(raised, LowStockAlert{
			ID:        uuid.New().String(),
			ProductID: lvl.ProductID,
			Article:   lvl.Article,
			Name:      lvl.Name,
			Quantity:  lvl.Quantity,
			Threshold: d.threshold,
			Source:    source,
			Reference: reference,
			CreatedAt: d.now().UTC(),
		})
	}
	if len(raised) == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.recent = append(d.recent, raised...)
	if over := len(d.recent) - d.limit; over > 0 {
		d.recent = append(d.recent[:0], d.recent[over:]...)
	}
	return raised
}

// Recent returns the kept alerts, newest first.
func (d *Detector) Recent() []LowStockAlert {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]LowStockAlert, len(d.recent))
	for i, a := range d.recent {
		out[len(d.recent)-1-i] = a
	}
	return out
}
