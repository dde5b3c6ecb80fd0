package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/example/footwear-pos/domain/apperr"
	"gorm.io/gorm"
)

// Timestamps are stored in UTC at whole-second precision so that SQLite's
// textual comparison orders them the same way time.Time does.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// ceilSecond rounds t up to a whole second. Stored timestamps have no
// sub-second part, so an inclusive lower bound must not round down.
func ceilSecond(t time.Time) time.Time {
	s := normalize(t)
	if s.Before(t) {
		s = s.Add(time.Second)
	}
	return s
}

// Repository provides access to the sales ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new ledger repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Append stores a new sale and assigns its ID. CreatedAt must already be set
// by the caller.
func (r *Repository) Append(ctx context.Context, sale *Sale) error {
	if sale.CreatedAt.IsZero() {
		return apperr.Invalid("created_at", "is required")
	}
	sale.ID = 0
	sale.CreatedAt = normalize(sale.CreatedAt)
	if err := r.db.WithContext(ctx).Create(sale).Error; err != nil {
		return apperr.Store("failed to append sale", err)
	}
	return nil
}

// FindByID retrieves a sale by its ID.
func (r *Repository) FindByID(ctx context.Context, id uint) (*Sale, error) {
	var sale Sale
	if err := r.db.WithContext(ctx).First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("failed to find sale", err)
	}
	return &sale, nil
}

// Query returns the sales inside rng, or every sale when rng is nil, ordered
// by timestamp and then by ID.
func (r *Repository) Query(ctx context.Context, rng *DateRange) ([]Sale, error) {
	q := r.db.WithContext(ctx)
	if rng != nil {
		if rng.End.Before(rng.Start) {
			return nil, apperr.Invalid("end", "must not be before start")
		}
		q = q.Where("created_at >= ? AND created_at <= ?", ceilSecond(rng.Start), normalize(rng.End))
	}

	sales := make([]Sale, 0)
	if err := q.Order("created_at ASC").Order("id ASC").Find(&sales).Error; err != nil {
		return nil, apperr.Store("failed to query sales", err)
	}
	return sales, nil
}

// Count returns the number of recorded sales.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Sale{}).Count(&n).Error; err != nil {
		return 0, apperr.Store("failed to count sales", err)
	}
	return n, nil
}

// BillNumberExists reports whether bill is already used by a sale.
func (r *Repository) BillNumberExists(ctx context.Context, bill string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Sale{}).Where("bill_number = ?", bill).Count(&n).Error; err != nil {
		return false, apperr.Store("failed to check bill number", err)
	}
	return n > 0, nil
}
