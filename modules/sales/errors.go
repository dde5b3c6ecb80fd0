package sales

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when a sale has no line items.
var ErrEmptyCart = errors.New("empty cart")

// ProductNotFoundError is returned when a line references an unknown product.
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

// OutOfStockError is returned for the first line whose product cannot cover
// the quantity requested so far in the sale.
type OutOfStockError struct {
	ProductID uint
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %d out of stock: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

// InsufficientPaymentError is returned when the amount tendered does not
// cover the sale total.
type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Tendered decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %s, tendered %s", e.Total.StringFixed(2), e.Tendered.StringFixed(2))
}
