// Package catalog provides the product entity and its storage.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a footwear article held in stock.
type Product struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Article       string          `gorm:"size:64;not null;index" json:"article"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Color         string          `gorm:"size:64" json:"color"`
	Size          int             `json:"size"`
	Quantity      int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	ListPrice     decimal.Decimal `gorm:"column:mrp;type:decimal(12,2);not null" json:"mrp"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"purchase_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName returns the table name for Product model.
func (Product) TableName() string {
	return "products"
}
