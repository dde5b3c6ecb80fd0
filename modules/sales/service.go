package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/domain/ledger"
	"github.com/example/footwear-pos/domain/settings"
	"github.com/example/footwear-pos/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultPaymentMethod is recorded when a sale names no payment method.
const DefaultPaymentMethod = "cash"

var hundred = decimal.NewFromInt(100)

// SettingsSource provides the tax rate applied to new sales.
type SettingsSource interface {
	Get(ctx context.Context) (*settings.Settings, error)
}

// EventPublisher publishes committed sales.
type EventPublisher interface {
	PublishSaleCompleted(event events.SaleCompletedEvent) error
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the clock used to timestamp sales.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBillNumbers replaces the bill number generator.
func WithBillNumbers(fn BillNumberFunc) Option {
	return func(s *Service) { s.billNumber = fn }
}

// WithSettings sets the source of the tax rate.
func WithSettings(src SettingsSource) Option {
	return func(s *Service) { s.settings = src }
}

// WithPublisher sets the publisher for SaleCompleted events.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// Service commits sales and reads the ledger.
type Service struct {
	db         *gorm.DB
	lock       *catalog.StockLock
	products   *catalog.Repository
	ledger     *ledger.Repository
	settings   SettingsSource
	publisher  EventPublisher
	billNumber BillNumberFunc
	now        func() time.Time
	logger     types.Logger
}

// NewService creates a new sales service. lock must be shared with every
// other writer of product quantities.
func NewService(db *gorm.DB, lock *catalog.StockLock, logger types.Logger, opts ...Option) (*Service, error) {
	s := &Service{
		db:       db,
		lock:     lock,
		products: catalog.NewRepository(db),
		ledger:   ledger.NewRepository(db),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.billNumber == nil {
		fn, err := NewBillNumberFunc()
		if err != nil {
			return nil, err
		}
		s.billNumber = fn
	}
	return s, nil
}

// Submit validates a sale against current stock and commits it as one unit:
// either every line's stock is decremented and the sale is recorded, or
// nothing changes.
func (s *Service) Submit(ctx context.Context, req SubmitSaleRequest) (*SaleReceipt, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	discount := req.Discount.Round(2)
	tendered := req.AmountTendered.Round(2)
	method := normalizePaymentMethod(req.PaymentMethod)

	// Read before taking the lock: the pool has a single connection, which
	// the transaction below holds until commit.
	taxPercent := s.taxPercent(ctx)

	var (
		sale      *ledger.Sale
		remaining []events.StockLevel
	)
	err := s.lock.Do(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			products := s.products.WithTx(tx)
			sales := s.ledger.WithTx(tx)

			// Validation pass. Quantities accumulate per product so repeated
			// lines are checked against stock together.
			resolved := make(map[uint]*catalog.Product, len(req.Lines))
			order := make([]uint, 0, len(req.Lines))
			requested := make(map[uint]int, len(req.Lines))
			for _, line := range req.Lines {
				p, ok := resolved[line.ProductID]
				if !ok {
					found, err := products.FindByID(ctx, line.ProductID)
					if errors.Is(err, apperr.ErrNotFound) {
						return &ProductNotFoundError{ProductID: line.ProductID}
					}
					if err != nil {
						return err
					}
					p = found
					resolved[line.ProductID] = p
					order = append(order, line.ProductID)
				}
				// Compare against the remainder; the running total never
				// exceeds stock.
				if line.Quantity > p.Quantity-requested[line.ProductID] {
					return &OutOfStockError{
						ProductID: line.ProductID,
						Requested: saturatingAdd(requested[line.ProductID], line.Quantity),
						Available: p.Quantity,
					}
				}
				requested[line.ProductID] += line.Quantity
			}

			lines := make([]ledger.SaleLine, 0, len(req.Lines))
			subtotal := decimal.Zero
			for _, line := range req.Lines {
				p := resolved[line.ProductID]
				lineTotal := p.ListPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
				subtotal = subtotal.Add(lineTotal)
				lines = append(lines, ledger.SaleLine{
					ProductID: p.ID,
					Article:   p.Article,
					Name:      p.Name,
					Quantity:  line.Quantity,
					UnitPrice: p.ListPrice,
					LineTotal: lineTotal,
				})
			}
			if discount.GreaterThan(subtotal) {
				return apperr.Invalid("discount", "exceeds subtotal")
			}
			total := subtotal.Sub(discount)
			if tendered.LessThan(total) {
				return &InsufficientPaymentError{Total: total, Tendered: tendered}
			}

			// Commit pass.
			for _, line := range req.Lines {
				if err := products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
					if errors.Is(err, catalog.ErrInsufficientStock) {
						p := resolved[line.ProductID]
						return &OutOfStockError{ProductID: line.ProductID, Requested: line.Quantity, Available: p.Quantity}
					}
					return fmt.Errorf("product %d: %w", line.ProductID, err)
				}
			}

			createdAt := s.now().UTC().Truncate(time.Second)
			bill, err := s.nextBillNumber(ctx, sales, createdAt)
			if err != nil {
				return err
			}

			sale = &ledger.Sale{
				BillNumber:     bill,
				Items:          lines,
				Subtotal:       subtotal,
				Discount:       discount,
				Total:          total,
				TaxPercent:     taxPercent,
				TaxAmount:      subtotal.Mul(taxPercent).Div(hundred).Round(2),
				PaymentMethod:  method,
				AmountTendered: tendered,
				ChangeDue:      tendered.Sub(total),
				CreatedAt:      createdAt,
			}
			if err := sales.Append(ctx, sale); err != nil {
				return err
			}

			remaining = make([]events.StockLevel, 0, len(order))
			for _, id := range order {
				p := resolved[id]
				remaining = append(remaining, events.StockLevel{
					ProductID: id,
					Article:   p.Article,
					Name:      p.Name,
					Quantity:  p.Quantity - requested[id],
				})
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Sale committed",
		"sale_id", sale.ID,
		"bill_number", sale.BillNumber,
		"total", sale.Total.StringFixed(2),
		"lines", len(sale.Items))
	s.publishCompleted(sale, remaining)

	return &SaleReceipt{
		SaleID:     sale.ID,
		BillNumber: sale.BillNumber,
		Subtotal:   sale.Subtotal,
		Discount:   sale.Discount,
		Total:      sale.Total,
		TaxPercent: sale.TaxPercent,
		TaxAmount:  sale.TaxAmount,
		ChangeDue:  sale.ChangeDue,
		CreatedAt:  sale.CreatedAt,
	}, nil
}

// List returns the sales inside rng, or all sales when rng is nil.
func (s *Service) List(ctx context.Context, rng *ledger.DateRange) ([]ledger.Sale, error) {
	return s.ledger.Query(ctx, rng)
}

// Get returns a single sale.
func (s *Service) Get(ctx context.Context, id uint) (*ledger.Sale, error) {
	if id == 0 {
		return nil, apperr.Invalid("id", "is required")
	}
	return s.ledger.FindByID(ctx, id)
}

// Now returns the service clock reading, used to close open-ended ranges.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) nextBillNumber(ctx context.Context, sales *ledger.Repository, at time.Time) (string, error) {
	for i := 0; i < maxBillAttempts; i++ {
		bill := s.billNumber(at)
		exists, err := sales.BillNumberExists(ctx, bill)
		if err != nil {
			return "", err
		}
		if !exists {
			return bill, nil
		}
	}
	return "", fmt.Errorf("no unique bill number after %d attempts: %w", maxBillAttempts, apperr.ErrStoreUnavailable)
}

func (s *Service) taxPercent(ctx context.Context) decimal.Decimal {
	if s.settings == nil {
		return decimal.Zero
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("Failed to load settings, recording sale without tax", "error", err)
		return decimal.Zero
	}
	return st.GSTPercent
}

func (s *Service) publishCompleted(sale *ledger.Sale, remaining []events.StockLevel) {
	if s.publisher == nil {
		return
	}
	event := events.SaleCompletedEvent{
		SaleID:      sale.ID,
		BillNumber:  sale.BillNumber,
		Total:       sale.Total,
		ItemCount:   sale.ItemCount(),
		Remaining:   remaining,
		CompletedAt: sale.CreatedAt,
	}
	if err := s.publisher.PublishSaleCompleted(event); err != nil {
		s.logger.Warn("Failed to publish SaleCompleted event", "sale_id", sale.ID, "error", err)
	}
}

func saturatingAdd(a, b int) int {
	if b > math.MaxInt-a {
		return math.MaxInt
	}
	return a + b
}

// validate checks the request shape before any store access.
func (r SubmitSaleRequest) validate() error {
	if len(r.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, line := range r.Lines {
		if line.ProductID == 0 {
			return apperr.Invalid("product_id", "is required")
		}
		if line.Quantity <= 0 {
			return apperr.Invalid("quantity", fmt.Sprintf("must be positive for product %d", line.ProductID))
		}
	}
	if r.Discount.IsNegative() {
		return apperr.Invalid("discount", "must be non-negative")
	}
	if r.AmountTendered.IsNegative() {
		return apperr.Invalid("amount_tendered", "must be non-negative")
	}
	return nil
}

func normalizePaymentMethod(method string) string {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return DefaultPaymentMethod
	}
	return method
}
