// Package events defines the typed events exchanged between POS modules.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
	"github.com/shopspring/decimal"
)

// StockLevel is the on-hand quantity of a product after a change.
type StockLevel struct {
	ProductID uint   `json:"product_id"`
	Article   string `json:"article"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// SaleCompletedEvent is emitted after a sale has been committed.
type SaleCompletedEvent struct {
	SaleID      uint            `json:"sale_id"`
	BillNumber  string          `json:"bill_number"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"item_count"`
	Remaining   []StockLevel    `json:"remaining"`
	CompletedAt time.Time       `json:"completed_at"`
}

// SaleCompletedV1 is the typed event definition for committed sales.
// Subject: events.sales.v1.sale-completed
var SaleCompletedV1 = helper.EventDefinition[SaleCompletedEvent](
	"sales", "SaleCompleted", "v1",
)

// ProductChangedEvent is emitted when an operator creates or edits a product.
type ProductChangedEvent struct {
	Product   StockLevel `json:"product"`
	Action    string     `json:"action"`
	ChangedAt time.Time  `json:"changed_at"`
}

// Product change actions.
const (
	ProductCreated = "created"
	ProductUpdated = "updated"
)

// ProductChangedV1 is the typed event definition for catalog edits.
// Subject: events.inventory.v1.product-changed
var ProductChangedV1 = helper.EventDefinition[ProductChangedEvent](
	"inventory", "ProductChanged", "v1",
)
