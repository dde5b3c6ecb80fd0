package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/example/footwear-pos/domain/apperr"
	"gorm.io/gorm"
)

// ErrInsufficientStock is returned when a decrement would drive quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Repository provides access to product storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new product repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create saves a new product and assigns its ID.
func (r *Repository) Create(ctx context.Context, product *Product) error {
	product.ID = 0
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return apperr.Store("failed to create product", err)
	}
	return nil
}

// FindByID retrieves a product by its ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*Product, error) {
	var product Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("failed to find product", err)
	}
	return &product, nil
}

// FindAll retrieves every product in insertion order.
func (r *Repository) FindAll(ctx context.Context) ([]Product, error) {
	products := make([]Product, 0)
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, apperr.Store("failed to list products", err)
	}
	return products, nil
}

// SearchByArticle returns products whose article contains term, ignoring case.
func (r *Repository) SearchByArticle(ctx context.Context, term string) ([]Product, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

	products := make([]Product, 0)
	err := r.db.WithContext(ctx).
		Where(`LOWER(article) LIKE ? ESCAPE '\'`, pattern).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, apperr.Store("failed to search products", err)
	}
	return products, nil
}

// FindBelowQuantity returns products whose quantity is strictly less than limit.
func (r *Repository) FindBelowQuantity(ctx context.Context, limit int) ([]Product, error) {
	products := make([]Product, 0)
	err := r.db.WithContext(ctx).
		Where("quantity < ?", limit).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, apperr.Store("failed to find low stock products", err)
	}
	return products, nil
}

// Update replaces every editable field of an existing product.
func (r *Repository) Update(ctx context.Context, product *Product) error {
	result := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", product.ID).
		Select("article", "name", "color", "size", "quantity", "mrp", "purchase_price", "updated_at").
		Updates(product)
	if err := result.Error; err != nil {
		return apperr.Store("failed to update product", err)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// Delete removes a product by ID (soft delete). Deleting an absent or already
// deleted product returns apperr.ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&Product{}, id)
	if err := result.Error; err != nil {
		return apperr.Store("failed to delete product", err)
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// DecrementStock lowers the quantity of a product by amount. The update is
// conditional, so it never drives quantity below zero.
func (r *Repository) DecrementStock(ctx context.Context, id uint, amount int) error {
	if amount <= 0 {
		return apperr.Invalid("quantity", "must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND quantity >= ?", id, amount).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", amount))
	if err := result.Error; err != nil {
		return apperr.Store("failed to decrement stock", err)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return err
	}
	return ErrInsufficientStock
}
