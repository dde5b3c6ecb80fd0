package settings

import (
	"context"
	"errors"

	"github.com/example/footwear-pos/domain/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists the settings singleton.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the stored record. It returns apperr.ErrNotFound when no row has
// been written yet.
func (r *Repository) Get(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := r.db.WithContext(ctx).First(&s, SingletonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Store("failed to load settings", err)
	}
	return &s, nil
}

// Upsert replaces the singleton wholesale.
func (r *Repository) Upsert(ctx context.Context, s *Settings) error {
	s.ID = SingletonID
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(s).Error
	if err != nil {
		return apperr.Store("failed to save settings", err)
	}
	return nil
}

// EnsureDefaults inserts the default record when the table is empty and
// reports whether it did.
func (r *Repository) EnsureDefaults(ctx context.Context) (bool, error) {
	defaults := Defaults()
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&defaults)
	if err := result.Error; err != nil {
		return false, apperr.Store("failed to seed settings", err)
	}
	return result.RowsAffected == 1, nil
}
