// Package settings serves the shop configuration singleton.
package settings

import (
	"context"
	"errors"
	"sync"

	"github.com/example/footwear-pos/domain/apperr"
	domain "github.com/example/footwear-pos/domain/settings"
	"github.com/go-monolith/mono/pkg/types"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "settings"

// Cache is the subset of the Redis cache used by the settings service.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
}

// Service reads and writes the settings singleton.
type Service struct {
	repo    *domain.Repository
	cache   Cache
	sfGroup singleflight.Group
	logger  types.Logger

	// mu orders cache writes; generation counts saves.
	mu         sync.Mutex
	generation uint64
}

// NewService creates a new settings service. cache may be nil.
func NewService(repo *domain.Repository, cache Cache, logger types.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Get returns the stored settings, or the defaults when nothing has been
// saved. Reads go through the cache when one is configured.
func (s *Service) Get(ctx context.Context) (*domain.Settings, error) {
	if s.cache != nil {
		var cached domain.Settings
		found, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("Settings cache read failed", "error", err)
		}
		if found {
			return &cached, nil
		}
	}

	val, err, _ := s.sfGroup.Do(cacheKey, func() (any, error) {
		gen := s.currentGeneration()
		st, err := s.repo.Get(ctx)
		if errors.Is(err, apperr.ErrNotFound) {
			defaults := domain.Defaults()
			return &defaults, nil
		}
		if err != nil {
			return nil, err
		}
		s.cacheIfCurrent(ctx, gen, st)
		return st, nil
	})
	if err != nil {
		return nil, err
	}

	// Copy so that callers never share the singleflight result.
	st := *val.(*domain.Settings)
	return &st, nil
}

// Set validates and stores the record wholesale. On a validation failure
// nothing is written.
func (s *Service) Set(ctx context.Context, in domain.Settings) (*domain.Settings, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, &in); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.generation++
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, &in); err != nil {
			s.logger.Warn("Failed to refresh settings cache", "error", err)
			if err := s.cache.Delete(ctx, cacheKey); err != nil {
				s.logger.Warn("Failed to invalidate settings cache", "error", err)
			}
		}
	}
	s.mu.Unlock()

	s.logger.Info("Settings saved", "shop_name", in.ShopName, "gst_percent", in.GSTPercent.String())
	return &in, nil
}

func (s *Service) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// cacheIfCurrent stores st unless a save happened after it was read, in
// which case the cache already holds the newer record.
func (s *Service) cacheIfCurrent(ctx context.Context, gen uint64, st *domain.Settings) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return
	}
	if err := s.cache.Set(ctx, cacheKey, st); err != nil {
		s.logger.Warn("Failed to cache settings", "error", err)
	}
}

// EnsureDefaults seeds the default record on first startup.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	created, err := s.repo.EnsureDefaults(ctx)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("Seeded default settings")
	}
	return nil
}
