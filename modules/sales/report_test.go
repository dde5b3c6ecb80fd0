package sales

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// seedSales records one sale at each of the given times.
func seedSales(t *testing.T, times []time.Time, price string) *fixture {
	t.Helper()

	i := 0
	f := newFixture(t, WithClock(func() time.Time {
		now := times[i]
		i++
		return now
	}))
	p := f.addProduct(t, "RPT", len(times)*2, price)

	for range times {
		_, err := f.svc.Submit(context.Background(), SubmitSaleRequest{
			Lines:          []LineRequest{{ProductID: p.ID, Quantity: 2}},
			Discount:       dec("5"),
			AmountTendered: dec("1000"),
		})
		require.NoError(t, err)
	}
	return f
}

func TestSummary_Periods(t *testing.T) {
	times := []time.Time{
		time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	f := seedSales(t, times, "50")
	ctx := context.Background()

	tests := []struct {
		period  string
		buckets []string
		counts  []int
	}{
		{PeriodDaily, []string{"2023-12-31", "2024-01-15", "2024-02-01"}, []int{1, 2, 1}},
		{PeriodMonthly, []string{"2023-12", "2024-01", "2024-02"}, []int{1, 2, 1}},
		{PeriodYearly, []string{"2023", "2024"}, []int{1, 3}},
		{"", []string{"2023-12-31", "2024-01-15", "2024-02-01"}, []int{1, 2, 1}},
	}

	for _, tt := range tests {
		t.Run("period "+tt.period, func(t *testing.T) {
			summary, err := f.svc.Summary(ctx, nil, tt.period)
			require.NoError(t, err)

			assert.Equal(t, 4, summary.InvoiceCount)
			assert.Equal(t, 8, summary.ItemsSold)
			assert.True(t, summary.TotalSales.Equal(dec("380")), "total = %s", summary.TotalSales)
			assert.True(t, summary.TotalDiscount.Equal(dec("20")))

			require.Len(t, summary.Buckets, len(tt.buckets))
			for i, b := range summary.Buckets {
				assert.Equal(t, tt.buckets[i], b.Period)
				assert.Equal(t, tt.counts[i], b.Count)
				assert.True(t, b.Total.Equal(dec("95").Mul(decimal.NewFromInt(int64(tt.counts[i])))))
			}
		})
	}
}

func TestSummary_RangeAndValidation(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC),
	}
	f := seedSales(t, times, "50")
	ctx := context.Background()

	rng, err := ParseDateRange("2024-01-02", "2024-01-03", time.Now())
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, rng, PeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.InvoiceCount)

	_, err = f.svc.Summary(ctx, nil, "weekly")
	field, ok := apperr.FieldOf(err)
	assert.True(t, ok)
	assert.Equal(t, "period", field)
}

func TestSummary_Empty(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.Summary(context.Background(), nil, PeriodMonthly)
	require.NoError(t, err)
	assert.Zero(t, summary.InvoiceCount)
	assert.True(t, summary.TotalSales.IsZero())
	assert.NotNil(t, summary.Buckets)
	assert.Empty(t, summary.Buckets)
}

func TestExportXLSX(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 2, 11, 30, 0, 0, time.UTC),
	}
	f := seedSales(t, times, "50")

	var buf bytes.Buffer
	n, err := f.svc.ExportXLSX(context.Background(), nil, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeaders, rows[0])
	assert.Regexp(t, `^BILL-20240301-\d{5}$`, rows[1][0])
	assert.Equal(t, "2024-03-02 11:30:00", rows[2][1])
	assert.Equal(t, "RPT x2", rows[1][2])
	assert.Equal(t, "95", rows[1][7])
	assert.Equal(t, "cash", rows[1][8])
}
