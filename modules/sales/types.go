package sales

import (
	"time"

	"github.com/example/footwear-pos/domain/ledger"
	"github.com/shopspring/decimal"
)

// LineRequest is one requested line of a sale.
type LineRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// SubmitSaleRequest is a finalized cart ready to be committed.
type SubmitSaleRequest struct {
	Lines          []LineRequest   `json:"lines"`
	Discount       decimal.Decimal `json:"discount"`
	PaymentMethod  string          `json:"payment_method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
}

// SaleReceipt is returned for a committed sale.
type SaleReceipt struct {
	SaleID     uint            `json:"sale_id"`
	BillNumber string          `json:"bill_number"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	TaxPercent decimal.Decimal `json:"tax_percent"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	ChangeDue  decimal.Decimal `json:"change_due"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ListSalesRequest filters the ledger by an optional inclusive date range.
// Dates are RFC3339 or YYYY-MM-DD.
type ListSalesRequest struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ListSalesResponse is the response containing a list of sales.
type ListSalesResponse struct {
	Sales []ledger.Sale `json:"sales"`
	Total int           `json:"total"`
}

// GetSaleRequest is the request for getting a sale.
type GetSaleRequest struct {
	ID uint `json:"id"`
}

// SummaryRequest asks for sales totals grouped by period.
type SummaryRequest struct {
	Period string `json:"period"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

// Period buckets for sales summaries.
const (
	PeriodDaily   = "daily"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

// Bucket is the total of one period.
type Bucket struct {
	Period string          `json:"period"`
	Total  decimal.Decimal `json:"total"`
	Count  int             `json:"count"`
	Items  int             `json:"items"`
}

// Summary aggregates the sales inside a range.
type Summary struct {
	Period        string          `json:"period"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	InvoiceCount  int             `json:"invoice_count"`
	ItemsSold     int             `json:"items_sold"`
	Buckets       []Bucket        `json:"buckets"`
}
