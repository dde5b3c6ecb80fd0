// Package ledger stores completed sales. Records are append-only.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// SaleLine is one line item of a sale. UnitPrice is the product's list price
// at commit time and is never re-derived.
type SaleLine struct {
	ProductID uint            `json:"product_id"`
	Article   string          `json:"article"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Sale is a completed, immutable sale record.
type Sale struct {
	ID             uint                          `gorm:"primarykey" json:"id"`
	BillNumber     string                        `gorm:"size:32;not null;uniqueIndex" json:"bill_number"`
	Items          datatypes.JSONSlice[SaleLine] `gorm:"not null" json:"items"`
	Subtotal       decimal.Decimal               `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount       decimal.Decimal               `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	Total          decimal.Decimal               `gorm:"type:decimal(12,2);not null" json:"total"`
	TaxPercent     decimal.Decimal               `gorm:"type:decimal(5,2);not null;default:0" json:"tax_percent"`
	TaxAmount      decimal.Decimal               `gorm:"type:decimal(12,2);not null;default:0" json:"tax_amount"`
	PaymentMethod  string                        `gorm:"size:32;not null" json:"payment_method"`
	AmountTendered decimal.Decimal               `gorm:"type:decimal(12,2);not null" json:"amount_tendered"`
	ChangeDue      decimal.Decimal               `gorm:"type:decimal(12,2);not null;default:0" json:"change_due"`
	CreatedAt      time.Time                     `gorm:"not null;index" json:"created_at"`
}

// TableName returns the table name for Sale model.
func (Sale) TableName() string {
	return "sales"
}

// ItemCount returns the number of units sold across all lines.
func (s *Sale) ItemCount() int {
	n := 0
	for _, line := range s.Items {
		n += line.Quantity
	}
	return n
}

// DateRange bounds a ledger query. Both ends are inclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
