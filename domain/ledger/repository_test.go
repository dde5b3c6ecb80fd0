package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&Sale{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newSale(bill string, at time.Time, qty int, price int64) *Sale {
	unit := decimal.NewFromInt(price)
	total := unit.Mul(decimal.NewFromInt(int64(qty)))
	return &Sale{
		BillNumber: bill,
		Items: []SaleLine{{
			ProductID: 1,
			Article:   "SH-1",
			Name:      "Runner",
			Quantity:  qty,
			UnitPrice: unit,
			LineTotal: total,
		}},
		Subtotal:       total,
		Total:          total,
		PaymentMethod:  "cash",
		AmountTendered: total,
		CreatedAt:      at,
	}
}

func TestRepository_Append(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 30, 15, 123456789, time.FixedZone("IST", 5*3600+1800))
	sale := newSale("BILL-20240301-00001", at, 2, 100)

	if err := repo.Append(ctx, sale); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if sale.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if sale.CreatedAt.Location() != time.UTC || sale.CreatedAt.Nanosecond() != 0 {
		t.Errorf("expected UTC second-precision timestamp, got %v", sale.CreatedAt)
	}

	found, err := repo.FindByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.BillNumber != sale.BillNumber {
		t.Errorf("expected bill number %q, got %q", sale.BillNumber, found.BillNumber)
	}
	if len(found.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(found.Items))
	}
	line := found.Items[0]
	if line.Quantity != 2 || !line.UnitPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected line %+v", line)
	}
	if !found.Total.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected total 200, got %s", found.Total)
	}
	if !found.CreatedAt.Equal(at.Truncate(time.Second)) {
		t.Errorf("expected timestamp %v, got %v", at.Truncate(time.Second), found.CreatedAt)
	}
}

func TestRepository_Append_RequiresTimestamp(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.Append(context.Background(), newSale("BILL-X", time.Time{}, 1, 10))
	if field, ok := apperr.FieldOf(err); !ok || field != "created_at" {
		t.Errorf("expected created_at validation error, got %v", err)
	}
}

func TestRepository_Append_DuplicateBillNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	if err := repo.Append(ctx, newSale("BILL-DUP", now, 1, 10)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	err := repo.Append(ctx, newSale("BILL-DUP", now, 1, 10))
	if !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Errorf("expected store error for duplicate bill number, got %v", err)
	}
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	if _, err := repo.FindByID(context.Background(), 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_Query(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	days := []int{0, 1, 1, 2, 5}
	for i, d := range days {
		sale := newSale("BILL-"+string(rune('A'+i)), base.AddDate(0, 0, d).Add(time.Hour), 1, int64(10*(i+1)))
		if err := repo.Append(ctx, sale); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	t.Run("no range returns all in order", func(t *testing.T) {
		sales, err := repo.Query(ctx, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(sales) != len(days) {
			t.Fatalf("expected %d sales, got %d", len(days), len(sales))
		}
		for i := 1; i < len(sales); i++ {
			prev, cur := sales[i-1], sales[i]
			if cur.CreatedAt.Before(prev.CreatedAt) {
				t.Errorf("sales not ordered by timestamp at %d", i)
			}
			if cur.CreatedAt.Equal(prev.CreatedAt) && cur.ID < prev.ID {
				t.Errorf("equal timestamps not ordered by id at %d", i)
			}
		}
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		rng := &DateRange{
			Start: base.AddDate(0, 0, 1).Add(time.Hour),
			End:   base.AddDate(0, 0, 2).Add(time.Hour),
		}
		sales, err := repo.Query(ctx, rng)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(sales) != 3 {
			t.Errorf("expected 3 sales, got %d", len(sales))
		}
		for _, s := range sales {
			if !rng.Contains(s.CreatedAt) {
				t.Errorf("sale %d at %v outside range", s.ID, s.CreatedAt)
			}
		}
	})

	t.Run("empty range", func(t *testing.T) {
		rng := &DateRange{Start: base.AddDate(1, 0, 0), End: base.AddDate(1, 0, 1)}
		sales, err := repo.Query(ctx, rng)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(sales) != 0 {
			t.Errorf("expected no sales, got %d", len(sales))
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		rng := &DateRange{Start: base.AddDate(0, 0, 2), End: base}
		if _, err := repo.Query(ctx, rng); err == nil {
			t.Error("expected validation error for inverted range")
		}
	})
}

func TestRepository_Count(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := repo.Append(ctx, newSale("BILL-C"+string(rune('0'+i)), time.Now(), 1, 5)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
}

func TestSale_ItemCount(t *testing.T) {
	sale := Sale{Items: []SaleLine{{Quantity: 2}, {Quantity: 3}}}
	if got := sale.ItemCount(); got != 5 {
		t.Errorf("ItemCount() = %d, want 5", got)
	}
}

func TestRepository_BillNumberExists(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	if err := repo.Append(ctx, newSale("BILL-20240301-12345", time.Now(), 1, 10)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	exists, err := repo.BillNumberExists(ctx, "BILL-20240301-12345")
	if err != nil {
		t.Fatalf("BillNumberExists() error = %v", err)
	}
	if !exists {
		t.Error("expected bill number to exist")
	}

	exists, err = repo.BillNumberExists(ctx, "BILL-20240301-99999")
	if err != nil {
		t.Fatalf("BillNumberExists() error = %v", err)
	}
	if exists {
		t.Error("expected bill number to be free")
	}
}

func TestRepository_Query_FractionalStartIsInclusive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, ts := range []time.Time{at, at.Add(time.Second)} {
		if err := repo.Append(ctx, newSale("BILL-F"+string(rune('A'+i)), ts, 1, 10)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	rng := &DateRange{Start: at.Add(500 * time.Millisecond), End: at.Add(time.Hour)}
	sales, err := repo.Query(ctx, rng)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(sales))
	}
	if !sales[0].CreatedAt.Equal(at.Add(time.Second)) {
		t.Errorf("expected sale at %v, got %v", at.Add(time.Second), sales[0].CreatedAt)
	}
}
