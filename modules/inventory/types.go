package inventory

import (
	"github.com/example/footwear-pos/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductInput carries the editable fields of a product. Quantity and MRP are
// pointers so that a missing value can be told apart from zero.
type ProductInput struct {
	Article       string           `json:"article"`
	Name          string           `json:"name"`
	Color         string           `json:"color"`
	Size          int              `json:"size"`
	Quantity      *int             `json:"quantity"`
	MRP           *decimal.Decimal `json:"mrp"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
}

// ListProductsRequest is the request for listing or searching products.
type ListProductsRequest struct {
	Search string `json:"search,omitempty"`
}

// ListProductsResponse is the response containing a list of products.
type ListProductsResponse struct {
	Products []catalog.Product `json:"products"`
	Total    int               `json:"total"`
}

// LowStockRequest is the request for products below a stock threshold.
type LowStockRequest struct {
	Threshold int `json:"threshold,omitempty"`
}

// LowStockResponse lists products below Threshold.
type LowStockResponse struct {
	Products  []catalog.Product `json:"products"`
	Threshold int               `json:"threshold"`
	Total     int               `json:"total"`
}

// GetProductRequest is the request for getting a product.
type GetProductRequest struct {
	ID uint `json:"id"`
}

// UpdateProductRequest replaces every editable field of product ID.
type UpdateProductRequest struct {
	ID uint `json:"id"`
	ProductInput
}

// DeleteProductRequest is the request for deleting a product.
type DeleteProductRequest struct {
	ID uint `json:"id"`
}

// DeleteProductResponse is the response after deleting a product.
type DeleteProductResponse struct {
	Deleted bool `json:"deleted"`
	ID      uint `json:"id"`
}
