package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"github.com/example/footwear-pos/domain/catalog"
	"github.com/example/footwear-pos/events"
	"github.com/go-monolith/mono/pkg/types"
)

// DefaultLowStockThreshold applies when no threshold is configured or given.
const DefaultLowStockThreshold = 2

// EventPublisher publishes catalog change events.
type EventPublisher interface {
	PublishProductChanged(event events.ProductChangedEvent) error
}

// Service answers inventory queries and applies operator edits to the catalog.
type Service struct {
	repo      *catalog.Repository
	lock      *catalog.StockLock
	threshold int
	publisher EventPublisher
	logger    types.Logger
}

// NewService creates a new inventory service. A nil publisher disables
// change events.
func NewService(repo *catalog.Repository, lock *catalog.StockLock, threshold int, publisher EventPublisher, logger types.Logger) *Service {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	return &Service{
		repo:      repo,
		lock:      lock,
		threshold: threshold,
		publisher: publisher,
		logger:    logger,
	}
}

// Threshold returns the configured low-stock threshold.
func (s *Service) Threshold() int {
	return s.threshold
}

// ListAll returns every product in insertion order.
func (s *Service) ListAll(ctx context.Context) ([]catalog.Product, error) {
	return s.repo.FindAll(ctx)
}

// Search returns products whose article contains term. A blank term matches
// nothing.
func (s *Service) Search(ctx context.Context, term string) ([]catalog.Product, error) {
	if strings.TrimSpace(term) == "" {
		return []catalog.Product{}, nil
	}
	return s.repo.SearchByArticle(ctx, term)
}

// LowStock returns products with quantity strictly below threshold. A
// threshold of zero or less selects the configured default.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]catalog.Product, int, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	products, err := s.repo.FindBelowQuantity(ctx, threshold)
	if err != nil {
		return nil, threshold, err
	}
	return products, threshold, nil
}

// Get returns a single product.
func (s *Service) Get(ctx context.Context, id uint) (*catalog.Product, error) {
	if id == 0 {
		return nil, apperr.Invalid("id", "is required")
	}
	return s.repo.FindByID(ctx, id)
}

// Create validates input and adds a new product.
func (s *Service) Create(ctx context.Context, in ProductInput) (*catalog.Product, error) {
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created", "id", product.ID, "article", product.Article, "quantity", product.Quantity)
	s.publishChange(product, events.ProductCreated)
	return product, nil
}

// Update replaces every editable field of product id. It runs under the
// stock lock so it never interleaves with a sale commit.
func (s *Service) Update(ctx context.Context, id uint, in ProductInput) (*catalog.Product, error) {
	if id == 0 {
		return nil, apperr.Invalid("id", "is required")
	}
	product, err := in.toProduct()
	if err != nil {
		return nil, err
	}
	product.ID = id

	var updated *catalog.Product
	err = s.lock.Do(func() error {
		if err := s.repo.Update(ctx, product); err != nil {
			return err
		}
		updated, err = s.repo.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated", "id", updated.ID, "quantity", updated.Quantity)
	s.publishChange(updated, events.ProductUpdated)
	return updated, nil
}

// Delete removes product id. Historical sales keep their copy of the line.
func (s *Service) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return apperr.Invalid("id", "is required")
	}
	err := s.lock.Do(func() error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Product deleted", "id", id)
	return nil
}

func (s *Service) publishChange(p *catalog.Product, action string) {
	if s.publisher == nil {
		return
	}
	event := events.ProductChangedEvent{
		Product: events.StockLevel{
			ProductID: p.ID,
			Article:   p.Article,
			Name:      p.Name,
			Quantity:  p.Quantity,
		},
		Action:    action,
		ChangedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishProductChanged(event); err != nil {
		s.logger.Warn("Failed to publish ProductChanged event", "id", p.ID, "error", err)
	}
}

// toProduct validates the input in field order and builds a product.
func (in ProductInput) toProduct() (*catalog.Product, error) {
	article := strings.TrimSpace(in.Article)
	if article == "" {
		return nil, apperr.Invalid("article", "is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if in.Size < 0 {
		return nil, apperr.Invalid("size", "must be non-negative")
	}
	if in.Quantity == nil {
		return nil, apperr.Invalid("quantity", "is required")
	}
	if *in.Quantity < 0 {
		return nil, apperr.Invalid("quantity", "must be non-negative")
	}
	if in.MRP == nil {
		return nil, apperr.Invalid("mrp", "is required")
	}
	if in.MRP.IsNegative() {
		return nil, apperr.Invalid("mrp", "must be non-negative")
	}

	product := &catalog.Product{
		Article:   article,
		Name:      name,
		Color:     strings.TrimSpace(in.Color),
		Size:      in.Size,
		Quantity:  *in.Quantity,
		ListPrice: in.MRP.Round(2),
	}
	if in.PurchasePrice != nil {
		if in.PurchasePrice.IsNegative() {
			return nil, apperr.Invalid("purchase_price", "must be non-negative")
		}
		product.PurchasePrice = in.PurchasePrice.Round(2)
	}
	return product, nil
}
