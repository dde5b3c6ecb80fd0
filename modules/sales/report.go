package sales

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/example/footwear-pos/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sales"

var periodLayouts = map[string]string{
	PeriodDaily:   "2006-01-02",
	PeriodMonthly: "2006-01",
	PeriodYearly:  "2006",
}

var exportHeaders = []string{
	"Bill No", "Date", "Items", "Qty", "Subtotal", "Discount", "GST", "Total", "Payment", "Tendered", "Change",
}

// Summary totals the sales inside rng and groups them into period buckets.
// An empty period means daily.
func (s *Service) Summary(ctx context.Context, rng *ledger.DateRange, period string) (*Summary, error) {
	if period == "" {
		period = PeriodDaily
	}
	layout, ok := periodLayouts[period]
	if !ok {
		return nil, apperr.Invalid("period", "must be daily, monthly or yearly")
	}

	sales, err := s.ledger.Query(ctx, rng)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Period:        period,
		TotalSales:    decimal.Zero,
		TotalDiscount: decimal.Zero,
		InvoiceCount:  len(sales),
		Buckets:       make([]Bucket, 0),
	}
	index := make(map[string]int)
	for i := range sales {
		sale := &sales[i]
		items := sale.ItemCount()

		summary.TotalSales = summary.TotalSales.Add(sale.Total)
		summary.TotalDiscount = summary.TotalDiscount.Add(sale.Discount)
		summary.ItemsSold += items

		key := sale.CreatedAt.UTC().Format(layout)
		pos, ok := index[key]
		if !ok {
			pos = len(summary.Buckets)
			index[key] = pos
			summary.Buckets = append(summary.Buckets, Bucket{Period: key, Total: decimal.Zero})
		}
		b := &summary.Buckets[pos]
		b.Total = b.Total.Add(sale.Total)
		b.Count++
		b.Items += items
	}
	return summary, nil
}

// ExportXLSX writes the sales inside rng to w as a spreadsheet, one row per
// sale. It returns the number of sales written.
func (s *Service) ExportXLSX(ctx context.Context, rng *ledger.DateRange, w io.Writer) (int, error) {
	sales, err := s.ledger.Query(ctx, rng)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return 0, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for idx := range sales {
		sale := &sales[idx]
		row := []any{
			sale.BillNumber,
			sale.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			describeItems(sale.Items),
			sale.ItemCount(),
			sale.Subtotal.InexactFloat64(),
			sale.Discount.InexactFloat64(),
			sale.TaxAmount.InexactFloat64(),
			sale.Total.InexactFloat64(),
			sale.PaymentMethod,
			sale.AmountTendered.InexactFloat64(),
			sale.ChangeDue.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write sale %d: %w", sale.ID, err)
		}
	}

	widths := map[string]float64{"A": 22, "B": 20, "C": 40, "I": 12}
	for col, width := range widths {
		if err := f.SetColWidth(exportSheet, col, col, width); err != nil {
			return 0, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return len(sales), nil
}

func describeItems(lines []ledger.SaleLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", l.Article, l.Quantity))
	}
	return strings.Join(parts, ", ")
}
